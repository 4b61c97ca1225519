package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/subfile-network/subfile/internal/config"
	"github.com/subfile-network/subfile/internal/publisher"
	"github.com/subfile-network/subfile/internal/store"
)

func init() {
	publishCmd.Flags().StringVar(&publishReadDir, "read-dir", "", "Directory containing the files to publish")
	publishCmd.Flags().StringVar(&publishFileNames, "file-names", "", "Comma-separated file names within --read-dir")
	publishCmd.Flags().Uint64Var(&publishChunkSize, "chunk-size", 0, "Chunk size in bytes (defaults to the configured default)")
	publishCmd.Flags().StringVar(&publishFileType, "file-type", "", "Manifest file_type field")
	publishCmd.Flags().StringVar(&publishSpecVersion, "spec-version", "", "Manifest spec_version field")
	publishCmd.Flags().StringVar(&publishDescription, "description", "", "Manifest description field")
	publishCmd.Flags().StringVar(&publishChainID, "chain-id", "", "Manifest chain_id field")
	publishCmd.Flags().Uint64Var(&publishStartBlock, "start-block", 0, "Manifest block_range.start_block")
	publishCmd.Flags().Int64Var(&publishEndBlock, "end-block", -1, "Manifest block_range.end_block (omit or -1 for open-ended)")
	publishCmd.MarkFlagRequired("read-dir")
	publishCmd.MarkFlagRequired("file-names")
	rootCmd.AddCommand(publishCmd)
}

var (
	publishReadDir     string
	publishFileNames   string
	publishChunkSize   uint64
	publishFileType    string
	publishSpecVersion string
	publishDescription string
	publishChainID     string
	publishStartBlock  uint64
	publishEndBlock    int64
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Chunk and publish files as a subfile manifest",
	Long:  `Split the named files into content-addressed chunks, upload them, and publish a manifest referencing them.`,
	RunE:  runPublish,
}

func runPublish(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	chunkSize := publishChunkSize
	if chunkSize == 0 {
		chunkSize = cfg.HTTP.DefaultChunkSize
	}

	var endBlock *uint64
	if publishEndBlock >= 0 {
		eb := uint64(publishEndBlock)
		endBlock = &eb
	}

	st := store.NewIPFSClient(cfg.Store.APIBaseURL)
	pub := publisher.New(st, publisher.Config{
		ReadDir:     publishReadDir,
		FileNames:   strings.Split(publishFileNames, ","),
		ChunkSize:   chunkSize,
		FileType:    publishFileType,
		SpecVersion: publishSpecVersion,
		Description: publishDescription,
		ChainID:     publishChainID,
		StartBlock:  publishStartBlock,
		EndBlock:    endBlock,
	})

	manifestHash, err := pub.Publish(context.Background())
	if err != nil {
		return err
	}

	fmt.Println(manifestHash)
	return nil
}
