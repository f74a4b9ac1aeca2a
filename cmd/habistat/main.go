// Command habistat ingests housing price-index CSV files into relational
// storage and reports on past ingestion runs.
package main

import "github.com/habistat-labs/habistat/internal/cli"

func main() {
	cli.Execute()
}
