package main

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/spf13/cobra"

	"docchat/internal/index"
)

var chunkSample int

var chunksCmd = &cobra.Command{
	Use:   "chunks",
	Short: "Print random chunks from the text store",
	Long:  "Debug helper: samples stored chunk texts so chunk boundaries and content can be eyeballed.",
	RunE:  runChunks,
}

func init() {
	chunksCmd.Flags().IntVarP(&chunkSample, "count", "n", 5, "number of chunks to sample")
}

func runChunks(cmd *cobra.Command, args []string) error {
	log, err := index.OpenTextLog(cfg.ChunksPath())
	if err != nil {
		return err
	}
	if log.Len() == 0 {
		fmt.Println("No chunks stored yet. Run 'docchat ingest' first.")
		return nil
	}

	positions := rand.Perm(log.Len())
	if chunkSample < len(positions) {
		positions = positions[:chunkSample]
	}

	for i, pos := range positions {
		text, _ := log.Get(pos)
		fmt.Printf("Chunk %d (position %d):\n%s\n%s\n", i+1, pos, text, strings.Repeat("-", 80))
	}
	return nil
}
