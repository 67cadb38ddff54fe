// Layout inspection tool - prints the block map of a saved city layout.
//
// Usage: go run ./cmd/layout -snapshot out/layout.snap
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/pthm-cable/cityloop/telemetry"
)

const symbols = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

func main() {
	snapshotPath := flag.String("snapshot", "layout.snap", "Path to a layout snapshot")
	showMobs := flag.Bool("mobs", false, "Print per-chunk car/cloud counts below the map")
	flag.Parse()

	l, err := telemetry.ReadLayout(*snapshotPath)
	if err != nil {
		slog.Error("failed to read layout", "path", *snapshotPath, "error", err)
		os.Exit(1)
	}

	printLayout(os.Stdout, l, *showMobs)
}

// printLayout writes one symbol per chunk, rows top to bottom, followed by a legend.
// Relaxed chunks are marked with '*'.
func printLayout(w io.Writer, l *telemetry.Layout, showMobs bool) {
	h := l.Header
	fmt.Fprintf(w, "seed=%d table_size=%d neighborhood=%s tick=%d\n\n", h.Seed, h.TableSize, h.Neighborhood, h.Tick)

	legend := blockSymbols(l)
	for y := 0; y < h.TableSize; y++ {
		var row strings.Builder
		for x := 0; x < h.TableSize; x++ {
			name := l.Block(x, y)
			sym, ok := legend[name]
			if !ok {
				sym = '.'
			}
			row.WriteRune(sym)
			if c := chunkAt(l, x, y); c != nil && c.Relaxed {
				row.WriteByte('*')
			} else {
				row.WriteByte(' ')
			}
		}
		fmt.Fprintln(w, strings.TrimRight(row.String(), " "))
	}

	fmt.Fprintln(w)
	names := make([]string, 0, len(legend))
	for name := range legend {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "%c  %s\n", legend[name], name)
	}

	if !showMobs {
		return
	}
	fmt.Fprintln(w)
	for _, c := range l.Chunks {
		var cars, clouds int
		for _, m := range c.Mobs {
			switch m.Kind {
			case "car":
				cars++
			case "cloud":
				clouds++
			}
		}
		fmt.Fprintf(w, "(%d,%d) cars=%d clouds=%d\n", c.X, c.Y, cars, clouds)
	}
}

// blockSymbols assigns symbols to block names in sorted order.
func blockSymbols(l *telemetry.Layout) map[string]rune {
	seen := map[string]bool{}
	for _, c := range l.Chunks {
		seen[c.Block] = true
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(map[string]rune, len(names))
	for i, name := range names {
		if i < len(symbols) {
			out[name] = rune(symbols[i])
		} else {
			out[name] = '?'
		}
	}
	return out
}

func chunkAt(l *telemetry.Layout, x, y int) *telemetry.ChunkState {
	i := y*l.Header.TableSize + x
	if i < 0 || i >= len(l.Chunks) {
		return nil
	}
	return &l.Chunks[i]
}
