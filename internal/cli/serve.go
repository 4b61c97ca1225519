package cli

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/subfile-network/subfile/internal/config"
	"github.com/subfile-network/subfile/internal/health"
	"github.com/subfile-network/subfile/internal/identity"
	"github.com/subfile-network/subfile/internal/server"
	"github.com/subfile-network/subfile/internal/store"
	"github.com/subfile-network/subfile/internal/subfile"
)

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "Host to listen on")
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	serveCmd.Flags().StringVar(&serveSubfiles, "subfiles", "", "Comma-separated manifest-hash:local-dir pairs to serve")
	serveCmd.Flags().StringVar(&serveAuthToken, "free-query-auth-token", "", "Bearer token required on every /subfiles/id request; empty means open access")
	serveCmd.Flags().StringVar(&serveMnemonic, "mnemonic", "", "Seed phrase the operator's long-term keypair is derived from")
	serveCmd.MarkFlagRequired("subfiles")
	serveCmd.MarkFlagRequired("mnemonic")
	rootCmd.AddCommand(serveCmd)
}

var (
	serveHost      string
	servePort      int
	serveSubfiles  string
	serveAuthToken string
	serveMnemonic  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve one or more local subfiles over HTTP",
	Long:  `Start the subfile HTTP server: a range service for the configured manifests plus an availability advertisement other nodes' probers query.`,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	kp, err := identity.FromMnemonic(serveMnemonic)
	if err != nil {
		return fmt.Errorf("derive operator identity: %w", err)
	}

	st := store.NewIPFSClient(cfg.Store.APIBaseURL)

	state := subfile.NewState(kp.PublicKeyHex(), version, serveAuthToken)

	pairs, err := parseSubfilesFlag(serveSubfiles)
	if err != nil {
		return err
	}

	localDirs := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		catCtx, cancel := context.WithTimeout(context.Background(), cfg.CatTimeout())
		sf, err := subfile.Load(catCtx, st, pair.manifestHash, pair.localDir)
		cancel()
		if err != nil {
			return fmt.Errorf("load manifest %s: %w", pair.manifestHash, err)
		}
		subfile.MustVerifyLocal(sf)
		state.Put(sf)
		localDirs = append(localDirs, pair.localDir)
		log.Printf("[server] serving manifest %s from %s", pair.manifestHash, pair.localDir)
	}

	checker := health.NewChecker(localDirs, 60*time.Second)
	checkerCtx, cancelChecker := context.WithCancel(context.Background())
	defer cancelChecker()
	go checker.Run(checkerCtx)

	srv := server.NewServer(state, checker)
	srv.EnableMetrics()

	addr := fmt.Sprintf("%s:%d", serveHost, servePort)
	log.Printf("[server] listening on %s", addr)
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		return fmt.Errorf("serve %s: %w", addr, err)
	}
	return nil
}

type subfilePair struct {
	manifestHash string
	localDir     string
}

// parseSubfilesFlag parses a comma-separated list of manifest-hash:local-dir
// pairs, the --subfiles flag's wire format.
func parseSubfilesFlag(flag string) ([]subfilePair, error) {
	if flag == "" {
		return nil, fmt.Errorf("--subfiles must name at least one manifest-hash:local-dir pair")
	}
	entries := strings.Split(flag, ",")
	pairs := make([]subfilePair, 0, len(entries))
	for _, entry := range entries {
		parts := strings.SplitN(entry, ":", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("malformed --subfiles entry %q, want manifest-hash:local-dir", entry)
		}
		pairs = append(pairs, subfilePair{manifestHash: parts[0], localDir: parts[1]})
	}
	return pairs, nil
}
