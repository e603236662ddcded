// Command slotcheck interprets a saved upstream reply offline. It prints the
// available slots, their day-part buckets and how a booking reply would be classified.
//
//	slotcheck [-mentioned] [-pretty] [file]
//
// With no file, the reply is read from stdin.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/wolfman30/booking-assistant/internal/availability"
)

type report struct {
	Slots        []string                `json:"slots"`
	Categories   availability.Categories `json:"categories"`
	State        string                  `json:"state"`
	FallbackUsed bool                    `json:"fallbackUsed"`
	Mentioned    []string                `json:"mentioned,omitempty"`
	Outcome      availability.Outcome    `json:"outcome"`
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "slotcheck:", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("slotcheck", flag.ContinueOnError)
	mentioned := fs.Bool("mentioned", false, "also list every time mentioned, ignoring status keywords")
	pretty := fs.Bool("pretty", false, "indent JSON output")
	if err := fs.Parse(args); err != nil {
		return err
	}

	in := stdin
	if fs.NArg() > 0 {
		f, err := os.Open(fs.Arg(0))
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	text := string(data)

	ex := availability.Extract(text)
	slots := ex.Strings()
	rep := report{
		Slots:        slots,
		Categories:   availability.Categorize(slots),
		State:        ex.State.String(),
		FallbackUsed: ex.FallbackUsed,
		Outcome:      availability.ClassifyBookingOutcome(text),
	}
	if *mentioned {
		rep.Mentioned = availability.ExtractMentionedSlots(text)
	}

	enc := json.NewEncoder(stdout)
	if *pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(rep)
}
