package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/harunnryd/echoscribe/pkg/store"
)

func main() {
	dbPath := flag.String("db", "echoscribe.sqlite", "path to the transcription database")
	recording := flag.String("recording", "", "recording name to combine")
	title := flag.String("title", "", "title for the combined transcript")
	deleteSegments := flag.Bool("delete", false, "delete original segments after combining")
	list := flag.Bool("list", false, "list recordings and exit")
	flag.Parse()

	if err := run(*dbPath, *recording, *title, *deleteSegments, *list); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(dbPath, recording, title string, deleteSegments, list bool) error {
	st, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()

	if list {
		return printRecordings(ctx, st)
	}
	if recording == "" {
		return fmt.Errorf("-recording is required (use -list to see what is available)")
	}

	id, err := st.CombineRecording(ctx, recording, title)
	if err != nil {
		return err
	}
	fmt.Printf("combined %q into record %d\n", recording, id)

	if deleteSegments {
		n, err := st.DeleteSegments(ctx, recording)
		if err != nil {
			return err
		}
		fmt.Printf("deleted %d original segments\n", n)
	}
	return nil
}

func printRecordings(ctx context.Context, st *store.Store) error {
	recent, err := st.RecentRecordings(ctx, 365)
	if err != nil {
		return err
	}
	if len(recent) == 0 {
		fmt.Println("no recordings found")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RECORDING\tSEGMENTS\tFIRST\tLAST")
	for _, r := range recent {
		fmt.Fprintf(w, "%s\t%d\t%.1fs\t%.1fs\n", r.Recording, r.SegmentCount, r.FirstOffset, r.LastOffset)
	}
	return w.Flush()
}
