// Package main provides the token wizard CLI:
// - Steps 1-3: form fields from flags, validated step by step
// - Submission: balance check, uploads, creation, metadata, revocations
// - Result: text report, optional Markdown/CSV files, explorer links
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"mime"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	gcstorage "cloud.google.com/go/storage"
	"github.com/prometheus/client_golang/prometheus"

	"solana-token-wizard/internal/domain"
	"solana-token-wizard/internal/observability"
	"solana-token-wizard/internal/orchestrator"
	"solana-token-wizard/internal/reporting"
	"solana-token-wizard/internal/solana"
	"solana-token-wizard/internal/storage"
	"solana-token-wizard/internal/storage/gcs"
	"solana-token-wizard/internal/storage/irys"
	"solana-token-wizard/internal/storage/memory"
	"solana-token-wizard/internal/storage/pinata"
	"solana-token-wizard/internal/wallet"
	"solana-token-wizard/internal/wizard"
)

type config struct {
	rpcEndpoint string
	wsEndpoint  string
	cluster     string
	keypair     string

	storagePrimary   string
	storageSecondary string
	pinataJWT        string
	pinataGateway    string
	irysBaseURL      string
	irysAPIKey       string
	irysGateway      string
	gcsBucket        string
	gcsPrefix        string

	metricsAddr string
	serve       bool

	deferFreeze bool
	skipAttach  bool
	timeout     time.Duration

	logoPath   string
	reportMD   string
	reportCSV  string
	checkStore bool
}

func main() {
	// Load .env file if exists
	loadEnvFile()

	var cfg config
	form := domain.NewFormState()

	// Parse flags (env vars as defaults)
	flag.StringVar(&cfg.rpcEndpoint, "rpc-endpoint", envOr("SOLANA_RPC_ENDPOINT", "https://api.devnet.solana.com"), "Solana RPC HTTP endpoint")
	flag.StringVar(&cfg.wsEndpoint, "ws-endpoint", os.Getenv("SOLANA_WS_ENDPOINT"), "Solana WebSocket endpoint for signature notifications (optional)")
	flag.StringVar(&cfg.cluster, "cluster", envOr("SOLANA_CLUSTER", reporting.ClusterDevnet), "Cluster name used for explorer links")
	flag.StringVar(&cfg.keypair, "keypair", os.Getenv("WALLET_KEYPAIR"), "Wallet keypair file or inline secret key")

	flag.StringVar(&cfg.storagePrimary, "storage-primary", envOr("STORAGE_PRIMARY", "pinata"), "Primary storage backend (pinata, irys, gcs, memory)")
	flag.StringVar(&cfg.storageSecondary, "storage-secondary", envOr("STORAGE_SECONDARY", "memory"), "Secondary storage backend, empty for none")
	flag.StringVar(&cfg.pinataJWT, "pinata-jwt", os.Getenv("PINATA_JWT"), "Pinata JWT")
	flag.StringVar(&cfg.pinataGateway, "pinata-gateway", os.Getenv("PINATA_GATEWAY"), "Pinata gateway prefix")
	flag.StringVar(&cfg.irysBaseURL, "irys-url", os.Getenv("IRYS_BASE_URL"), "Irys upload service URL")
	flag.StringVar(&cfg.irysAPIKey, "irys-api-key", os.Getenv("IRYS_API_KEY"), "Irys API key")
	flag.StringVar(&cfg.irysGateway, "irys-gateway", os.Getenv("IRYS_GATEWAY"), "Irys gateway prefix")
	flag.StringVar(&cfg.gcsBucket, "gcs-bucket", os.Getenv("GCS_BUCKET"), "GCS bucket for uploads")
	flag.StringVar(&cfg.gcsPrefix, "gcs-prefix", os.Getenv("GCS_PREFIX"), "Object name prefix inside the bucket")

	flag.StringVar(&cfg.metricsAddr, "metrics-addr", envOr("METRICS_ADDR", ":9090"), "HTTP address for /metrics and the memory store")
	flag.BoolVar(&cfg.serve, "serve", false, "Keep serving HTTP after submission until interrupted")
	flag.BoolVar(&cfg.checkStore, "check-storage", false, "Test Pinata credentials and exit")

	flag.StringVar(&form.TokenName, "name", "", "Token name (step 1)")
	flag.StringVar(&form.TokenSymbol, "symbol", "", "Token symbol, up to 8 characters (step 1)")
	flag.StringVar(&cfg.logoPath, "logo", "", "Logo image file (step 1)")
	flag.IntVar(&form.Decimals, "decimals", form.Decimals, "Decimals, 0-18 (step 2)")
	flag.Uint64Var(&form.TokenSupply, "supply", form.TokenSupply, "Initial supply in whole tokens (step 2)")
	flag.StringVar(&form.Description, "description", "", "Token description (step 2)")
	flag.StringVar(&form.Creator, "creator", "", "Creator name (step 3)")
	flag.StringVar(&form.Website, "website", "", "Website URL (step 3)")
	flag.StringVar(&form.Twitter, "twitter", "", "Twitter URL (step 3)")
	flag.StringVar(&form.Telegram, "telegram", "", "Telegram URL (step 3)")
	flag.StringVar(&form.Discord, "discord", "", "Discord URL (step 3)")
	flag.BoolVar(&form.RevokeMint, "revoke-mint", form.RevokeMint, "Revoke mint authority (step 3)")
	flag.BoolVar(&form.RevokeFreeze, "revoke-freeze", form.RevokeFreeze, "Revoke freeze authority (step 3)")
	flag.BoolVar(&form.RevokeUpdate, "revoke-update", form.RevokeUpdate, "Revoke metadata update authority (step 3)")

	flag.BoolVar(&cfg.deferFreeze, "defer-freeze-revocation", false, "Grant freeze authority at creation and revoke it afterwards")
	flag.BoolVar(&cfg.skipAttach, "skip-metadata-attach", false, "Do not create the on-chain metadata account")
	flag.DurationVar(&cfg.timeout, "timeout", 5*time.Minute, "Overall submission timeout")
	flag.StringVar(&cfg.reportMD, "report-md", "", "Write a Markdown report to this path")
	flag.StringVar(&cfg.reportCSV, "report-csv", "", "Write a CSV of addresses and signatures to this path")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[tokenwizard] ", log.LstdFlags|log.Lshortfile)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(observability.DefaultNamespace, reg)
	repo := memory.NewRepository(publicBaseURL(cfg.metricsAddr))

	if cfg.checkStore {
		os.Exit(checkStorage(ctx, cfg, logger))
	}

	primary, err := newBackend(ctx, cfg.storagePrimary, cfg, repo)
	if err != nil {
		logger.Fatalf("primary storage: %v", err)
	}
	secondary, err := newBackend(ctx, cfg.storageSecondary, cfg, repo)
	if err != nil {
		logger.Fatalf("secondary storage: %v", err)
	}

	go startHTTPServer(cfg.metricsAddr, reg, repo, logger)

	if cfg.keypair == "" {
		logger.Fatal("--keypair is required")
	}
	account, err := wallet.LoadKeypair(cfg.keypair)
	if err != nil {
		logger.Fatalf("Failed to load keypair: %v", err)
	}
	if cfg.logoPath != "" {
		logo, err := readLogo(cfg.logoPath)
		if err != nil {
			logger.Fatalf("Failed to read logo: %v", err)
		}
		form.Logo = logo
	}

	rpcOpts := []solana.ClientOption{solana.WithObserver(metrics.RecordRPCLatency)}
	if cfg.wsEndpoint != "" {
		wsCfg := solana.DefaultWSConfig()
		wsCfg.Logger = log.New(os.Stdout, "[ws] ", log.LstdFlags)
		ws, err := solana.NewWSClient(ctx, cfg.wsEndpoint, &wsCfg)
		if err != nil {
			logger.Printf("WebSocket unavailable, confirming by polling: %v", err)
		} else {
			defer ws.Close()
			rpcOpts = append(rpcOpts, solana.WithSignatureWatcher(ws))
		}
	}
	rpc := solana.NewHTTPClient(cfg.rpcEndpoint, rpcOpts...)

	issuer, err := orchestrator.New(orchestrator.Options{
		RPC:    rpc,
		Wallet: wallet.NewKeypair(account),
		Storage: storage.NewAdapter(storage.AdapterOptions{
			Policy:  storage.DefaultPolicy(primary, secondary),
			Metrics: metrics,
			Logger:  log.New(os.Stdout, "[storage] ", log.LstdFlags),
		}),
		DeferFreezeRevocation: cfg.deferFreeze,
		SkipMetadataAttach:    cfg.skipAttach,
		Metrics:               metrics,
		Logger:                log.New(os.Stdout, "[orchestrator] ", log.LstdFlags),
	})
	if err != nil {
		logger.Fatalf("Failed to create orchestrator: %v", err)
	}

	logger.Printf("Wallet %s, fee %s SOL to %s",
		account.PublicKey.ToBase58(), domain.ServiceFeeSOL, solana.ShortAddress(domain.ServiceFeeRecipient))

	w := wizard.New(issuer, log.New(os.Stdout, "[wizard] ", log.LstdFlags))
	if err := fillWizard(w, form); err != nil {
		logger.Printf("Form rejected at %s: %v", w.State(), err)
		os.Exit(2)
	}

	submitCtx, cancel := context.WithTimeout(ctx, cfg.timeout)
	done := make(chan struct{})
	go reportProgress(w, done, logger)
	submitErr := w.Submit(submitCtx)
	close(done)
	cancel()

	gen := reporting.NewGenerator(reporting.NewExplorer(cfg.cluster))
	report := gen.Generate(w.Form(), w.Result(), w.Failure())
	fmt.Print(reporting.RenderText(report))

	if cfg.reportMD != "" {
		if err := os.WriteFile(cfg.reportMD, []byte(reporting.RenderMarkdown(report)), 0o644); err != nil {
			logger.Printf("Failed to write %s: %v", cfg.reportMD, err)
		}
	}
	if cfg.reportCSV != "" && report.Status == reporting.StatusSuccess {
		csv, err := reporting.RenderCSV(report)
		if err == nil {
			err = os.WriteFile(cfg.reportCSV, []byte(csv), 0o644)
		}
		if err != nil {
			logger.Printf("Failed to write %s: %v", cfg.reportCSV, err)
		}
	}

	if submitErr != nil {
		os.Exit(1)
	}
	if cfg.serve {
		logger.Printf("Serving on %s, press Ctrl+C to exit", cfg.metricsAddr)
		<-ctx.Done()
	}
}

// fillWizard walks the three steps with the values from flags.
func fillWizard(w *wizard.Wizard, form domain.FormState) error {
	steps := []func(*domain.FormState){
		func(f *domain.FormState) {
			f.TokenName, f.TokenSymbol, f.Logo = form.TokenName, form.TokenSymbol, form.Logo
		},
		func(f *domain.FormState) {
			f.Decimals, f.TokenSupply, f.Description = form.Decimals, form.TokenSupply, form.Description
		},
	}
	for _, fill := range steps {
		if err := w.Update(fill); err != nil {
			return err
		}
		if err := w.Next(); err != nil {
			return err
		}
	}
	return w.Update(func(f *domain.FormState) {
		f.Creator, f.Website, f.Twitter, f.Telegram, f.Discord = form.Creator, form.Website, form.Twitter, form.Telegram, form.Discord
		f.RevokeMint, f.RevokeFreeze, f.RevokeUpdate = form.RevokeMint, form.RevokeFreeze, form.RevokeUpdate
	})
}

func reportProgress(w *wizard.Wizard, done <-chan struct{}, logger *log.Logger) {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	var last domain.Progress
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if p := w.Progress(); p != last && p.Percent > 0 {
				logger.Printf("%3d%% %s", p.Percent, p.Status)
				last = p
			}
		}
	}
}

// newBackend resolves a storage backend by name. An empty name disables
// the tier.
func newBackend(ctx context.Context, name string, cfg config, repo *memory.Repository) (storage.Backend, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return nil, nil
	case "memory":
		return repo, nil
	case "pinata":
		if cfg.pinataJWT == "" {
			return nil, fmt.Errorf("pinata: %w: PINATA_JWT is empty", storage.ErrNotConfigured)
		}
		opts := []pinata.ClientOption{pinata.WithLogger(log.New(os.Stdout, "[pinata] ", log.LstdFlags))}
		if cfg.pinataGateway != "" {
			opts = append(opts, pinata.WithGateway(cfg.pinataGateway))
		}
		return pinata.New(cfg.pinataJWT, opts...), nil
	case "irys":
		if cfg.irysBaseURL == "" {
			return nil, fmt.Errorf("irys: %w: IRYS_BASE_URL is empty", storage.ErrNotConfigured)
		}
		return irys.NewUploader(irys.Options{
			BaseURL: cfg.irysBaseURL,
			APIKey:  cfg.irysAPIKey,
			Gateway: cfg.irysGateway,
			Logger:  log.New(os.Stdout, "[irys] ", log.LstdFlags),
		}), nil
	case "gcs":
		if cfg.gcsBucket == "" {
			return nil, fmt.Errorf("gcs: %w: GCS_BUCKET is empty", storage.ErrNotConfigured)
		}
		client, err := gcstorage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("gcs: %w", err)
		}
		return gcs.New(client, cfg.gcsBucket, cfg.gcsPrefix), nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", name)
}

func checkStorage(ctx context.Context, cfg config, logger *log.Logger) int {
	client := pinata.New(cfg.pinataJWT)
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	if err := client.TestAuthentication(ctx); err != nil {
		if errors.Is(err, storage.ErrNotConfigured) {
			logger.Println("Pinata: PINATA_JWT is not set")
		} else {
			logger.Printf("Pinata: authentication failed: %v", err)
		}
		return 1
	}
	logger.Println("Pinata: credentials OK")
	return 0
}

func readLogo(path string) (*domain.Logo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return &domain.Logo{
		FileName:    filepath.Base(path),
		ContentType: contentType,
		Data:        data,
	}, nil
}

// publicBaseURL turns a listen address into the URL prefix of memory-store
// locators.
func publicBaseURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	return "http://" + addr
}

// startHTTPServer serves health, metrics and the in-memory content store.
func startHTTPServer(addr string, reg *prometheus.Registry, repo *memory.Repository, logger *log.Logger) {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Prometheus metrics
	mux.Handle("/metrics", observability.Handler(reg))

	// Uploaded content when the memory backend is in use
	mux.Handle("/files/", repo)
	mux.Handle("/metadata/", repo)

	logger.Printf("Starting HTTP server on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		logger.Printf("HTTP server error: %v", err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// loadEnvFile loads environment variables from .env file.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
