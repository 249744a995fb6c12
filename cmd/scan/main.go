// scan runs the receipt pipeline once on an image and prints the parsed
// receipt as JSON.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"splitbill/pkg/ocr"
	"splitbill/pkg/receipt"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: scan <image>")
	}
	lines, err := ocr.ExtractLines(context.Background(), os.Args[1])
	if err != nil {
		log.Fatalf("extract: %v", err)
	}
	for _, l := range lines {
		log.Printf("  line: %s", l)
	}
	parsed, err := receipt.NewParser().ParseLines(lines)
	if err != nil {
		log.Fatalf("parse: %v", err)
	}
	rec := receipt.NewAssembler().Assemble(parsed)
	out, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		log.Fatalf("encode: %v", err)
	}
	fmt.Println(string(out))
}
