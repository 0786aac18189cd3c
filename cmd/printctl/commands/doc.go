// Package commands defines the printctl CLI, the command-line client of the
// print desk.
//
// Commands
//
//   - quote     Estimate pages and price for a set of files
//   - submit    Quote, then send the files to the upload server
//   - preview   Show the first characters of a text file or render a PDF page
//
// Page settings default to black & white portrait. --color and --landscape
// take NAME or NAME=RANGES (for example report.pdf=1,3-5) and may repeat.
package commands
