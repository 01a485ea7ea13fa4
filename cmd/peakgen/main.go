// Command peakgen is a CLI front end to the peak generator and cache:
// given one or more audio files, it resolves each file's on-disk peak
// cache path, regenerates the peakfile if stale, and reports the
// result. See spec.md §4.3, §6.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ayyi/libwaveform-sub000/internal/decoder"
	"github.com/ayyi/libwaveform-sub000/internal/peakcache"
	"github.com/ayyi/libwaveform-sub000/internal/peakfile"
)

func main() {
	force := flag.Bool("force", false, "regenerate even if the cached peakfile looks fresh")
	sweep := flag.Bool("sweep", false, "delete cache entries older than peakcache.Expiry before generating")
	printPath := flag.Bool("path", false, "print the resolved cache path for each file and exit")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: peakgen [-force] [-sweep] [-path] file...")
		os.Exit(2)
	}

	if *sweep {
		needCheck := true
		if err := peakcache.Sweep(true, &needCheck); err != nil {
			log.Printf("peakgen: sweep: %v", err)
		}
	}

	d := decoder.New(decoder.WAVBackend{}, decoder.MP3Backend{})
	gen := peakcache.NewGenerator(d)

	status := 0
	for _, path := range flag.Args() {
		if err := process(gen, path, *force, *printPath); err != nil {
			log.Printf("peakgen: %s: %v", path, err)
			status = 1
		}
	}
	os.Exit(status)
}

func process(gen *peakcache.Generator, path string, force, printPath bool) error {
	peakPath, err := peakcache.PathFor(path)
	if err != nil {
		return err
	}
	if printPath {
		fmt.Println(peakPath)
		return nil
	}

	if force || !peakcache.IsFresh(path, peakPath) {
		start := time.Now()
		if err := gen.GenerateSync(path, peakPath); err != nil {
			return err
		}
		f, err := peakfile.Open(peakPath)
		if err != nil {
			return err
		}
		fmt.Printf("%s: generated %s (%d peaks/channel, %d channel(s), %s)\n",
			path, peakPath, f.NumPeaks(), f.Channels, time.Since(start).Round(time.Millisecond))
		return nil
	}

	fmt.Printf("%s: %s is up to date\n", path, peakPath)
	return nil
}
