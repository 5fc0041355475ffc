// cmd/gendata writes a deterministic synthetic session file that
// exercises the gap-up and breakdown path, for smoke runs:
//
//	go run ./cmd/gendata -out market_data.json
package main

import (
	"flag"
	"fmt"
	"os"

	"gapfade/internal/data"
	"gapfade/internal/types"
)

var (
	outPath    = flag.String("out", "market_data.json", "Output file path")
	instrument = flag.String("instrument", "RELIANCE", "Instrument identifier")
	capital    = flag.Float64("capital", 100000, "Starting capital")
)

func main() {
	flag.Parse()

	// Previous close 800; the 09:25 bar opens 3.25% above it and holds
	// over the slow EMA, arming the detector. The 09:35 bar breaks its
	// low, so a short entry fires at that bar's close.
	bars := []types.Bar{
		types.NewBar("09:15", 810, 815, 808, 812),
		types.NewBar("09:20", 812, 818, 811, 816),
		types.NewBar("09:25", 826, 830, 825, 828),
		types.NewBar("09:30", 828, 829, 826, 827),
		types.NewBar("09:35", 826, 827, 822, 823),
		types.NewBar("09:40", 823, 824, 818, 819),
		types.NewBar("09:45", 819, 820, 814, 815),
		types.NewBar("10:00", 815, 817, 812, 813),
		types.NewBar("10:15", 813, 815, 810, 811),
		types.NewBar("15:00", 811, 812, 808, 809),
	}

	session, err := types.NewSession(*instrument, 800, *capital, bars)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}

	if err := data.SaveSession(session, *outPath); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Wrote %d bars for %s to %s\n", len(bars), *instrument, *outPath)
}
