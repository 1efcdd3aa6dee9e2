package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/harunnryd/echoscribe/pkg/export"
	"github.com/harunnryd/echoscribe/pkg/store"
)

func main() {
	dbPath := flag.String("db", "echoscribe.sqlite", "path to the transcription database")
	recording := flag.String("recording", "", "combined recording to export")
	outDir := flag.String("out", "export", "output directory for markdown files")
	all := flag.Bool("all", false, "export every combined recording")
	flag.Parse()

	if err := run(*dbPath, *recording, *outDir, *all); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(dbPath, recording, outDir string, all bool) error {
	st, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()

	if all {
		combined, err := st.CombinedRecordings(ctx)
		if err != nil {
			return err
		}
		if len(combined) == 0 {
			return fmt.Errorf("no combined recordings to export")
		}
		for i := range combined {
			path, err := export.WriteFile(outDir, &combined[i])
			if err != nil {
				return err
			}
			fmt.Println("wrote", path)
		}
		return nil
	}

	if recording == "" {
		return fmt.Errorf("-recording is required (or pass -all)")
	}
	c, err := st.CombinedByRecording(ctx, recording)
	if err != nil {
		return err
	}
	if c == nil {
		return fmt.Errorf("no combined transcript for %q (run combine first)", recording)
	}
	path, err := export.WriteFile(outDir, c)
	if err != nil {
		return err
	}
	fmt.Println("wrote", path)
	return nil
}
