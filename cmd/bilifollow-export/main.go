package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"bilifollow/pkg/auth"
	"bilifollow/pkg/bilibili"
	"bilifollow/pkg/config"
	"bilifollow/pkg/export"
	"bilifollow/pkg/logger"
	"bilifollow/pkg/storage"
	"bilifollow/pkg/ui"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	outputFile = flag.String("output", "", "Output file for the followings list")
	logLevel   = flag.String("log-level", "", "Log level (debug, info, warn, error)")
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configFile)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}
	if *outputFile != "" {
		cfg.Export.OutputFile = *outputFile
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}

	// Initialize logger
	if err := logger.Initialize(&cfg.Logging); err != nil {
		ui.PrintError("Failed to initialize logger", err.Error())
		os.Exit(1)
	}
	logger.WithField("output", cfg.Export.OutputFile).Info("bilifollow export starting")

	// Validate credentials, falling back to the credential store
	cred := &cfg.DownloadCredential
	if err := cred.Validate(config.SectionDownload); err != nil {
		stored := retrieveStoredCredential(config.SectionDownload)
		if stored == nil {
			logger.WithError(err).Error("missing download credentials")
			ui.PrintError("Missing download credentials", err.Error())
			os.Exit(1)
		}
		cred = stored
	}

	ctx := context.Background()
	client := bilibili.NewClient(cred, cfg.Export.RequestTimeout, logger.GetLogger())

	// Confirm the credential is alive before paginating
	info, err := client.MyInfo(ctx)
	if err != nil {
		logger.WithError(err).Error("credential check failed")
		ui.PrintError("Credential check failed", err.Error())
		os.Exit(1)
	}
	ui.PrintInfo("Account", fmt.Sprintf("%s (uid %d)", info.Name, info.Mid))

	exporter := export.New(client, cfg.Pacing.PageInterval, logger.GetLogger())
	followings, err := exporter.FetchAll(ctx, cred.UID)
	if err != nil {
		logger.WithError(err).Error("export interrupted")
		ui.PrintError("Export interrupted", err.Error())
		os.Exit(1)
	}

	store := storage.NewManager(cfg.Export.OutputFile, logger.GetLogger())
	if err := store.Save(followings); err != nil {
		logger.WithError(err).Error("failed to write followings file")
		ui.PrintError("Failed to write followings file", err.Error())
		os.Exit(1)
	}

	logger.WithFields(map[string]interface{}{
		"count": len(followings),
		"path":  store.Path(),
	}).Info("export completed")
	ui.PrintInfo("Followings exported", fmt.Sprintf("%d", len(followings)))
	ui.PrintSuccess("Saved to " + store.Path())
}

// retrieveStoredCredential looks the section up in the credential store
// and converts the stored account to a config credential. Returns nil
// when nothing usable is stored.
func retrieveStoredCredential(section string) *config.CredentialConfig {
	mgr, err := auth.NewManager()
	if err != nil {
		return nil
	}

	account, err := mgr.Retrieve(section)
	if err != nil {
		return nil
	}

	cred := &config.CredentialConfig{
		Sessdata: account.Sessdata,
		BiliJct:  account.BiliJct,
		UID:      account.UID,
		Buvid3:   account.Buvid3,
	}
	if err := cred.Validate(section); err != nil {
		return nil
	}

	return cred
}
