// loggrep searches the monitor's logs for a word: the plain-text process
// log line by line, and the JSON reading log field by field.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"device_monitor/internal/logstore"
)

const (
	defaultTextLog = "/var/log/device_monitor/device_monitor.log"
	defaultJSONLog = "/var/log/device_monitor/device_data.json"
)

func main() {
	var (
		textLog string
		jsonLog string
	)
	flag.StringVar(&textLog, "log", defaultTextLog, "path to the text log")
	flag.StringVar(&jsonLog, "data", defaultJSONLog, "path to the JSON reading log")
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}
	word := strings.ToLower(flag.Arg(0))

	fmt.Printf("Searching for %q...\n", word)
	fmt.Println(strings.Repeat("-", 60))

	found := searchTextLog(textLog, word)
	found = searchJSONLog(jsonLog, word) || found

	if !found {
		fmt.Println("No matches found.")
	}
	fmt.Println(strings.Repeat("-", 60))
}

func usage() {
	fmt.Println("usage: loggrep [flags] WORD")
	fmt.Println("examples:")
	fmt.Println("  loggrep ERROR      # find failed readings")
	fmt.Println("  loggrep V_12V      # find a voltage value")
	fmt.Println("  loggrep A_1A       # find a current value")
	fmt.Println("  loggrep S_DSA123   # find a serial number")
	fmt.Println("  loggrep OK         # find successful readings")
	flag.PrintDefaults()
}

// searchTextLog prints matching lines with their line numbers.
func searchTextLog(path, word string) bool {
	f, err := os.Open(path)
	if err != nil {
		fmt.Printf("cannot open %s\n", path)
		return false
	}
	defer f.Close()

	found := false
	scanner := bufio.NewScanner(f)
	for line := 1; scanner.Scan(); line++ {
		if strings.Contains(strings.ToLower(scanner.Text()), word) {
			fmt.Printf("%s:%d: %s\n", path, line, scanner.Text())
			found = true
		}
	}
	return found
}

// searchJSONLog prints matching reading fields with their record numbers.
func searchJSONLog(path, word string) bool {
	matches := logstore.New(path, 0, 0).Search(word)
	for _, m := range matches {
		fmt.Printf("%s: record #%d, field %q: %s\n", path, m.Record, m.Field, m.Value)
	}
	return len(matches) > 0
}
