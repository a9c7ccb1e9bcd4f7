package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"bilifollow/pkg/auth"
	"bilifollow/pkg/bilibili"
	"bilifollow/pkg/checkpoint"
	"bilifollow/pkg/config"
	"bilifollow/pkg/follow"
	"bilifollow/pkg/logger"
	"bilifollow/pkg/storage"
	"bilifollow/pkg/ui"
)

var (
	configFile      = flag.String("config", "", "Path to configuration file")
	inputFile       = flag.String("input", "", "Followings file to process")
	logLevel        = flag.String("log-level", "", "Log level (debug, info, warn, error)")
	noResume        = flag.Bool("no-resume", false, "Discard any existing checkpoint and start over")
	saveCredentials = flag.Bool("save-credentials", false, "Prompt for credentials, store them, and exit")
)

func main() {
	flag.Parse()

	if *saveCredentials {
		if err := storeCredentials(); err != nil {
			ui.PrintError("Failed to store credentials", err.Error())
			os.Exit(1)
		}
		ui.PrintSuccess("Credentials stored under " + config.SectionAutoFollow)
		return
	}

	// Load configuration
	cfg, err := config.Load(*configFile)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	input := cfg.Export.OutputFile
	if *inputFile != "" {
		input = *inputFile
	}

	// Initialize logger
	if err := logger.Initialize(&cfg.Logging); err != nil {
		ui.PrintError("Failed to initialize logger", err.Error())
		os.Exit(1)
	}
	logger.WithField("input", input).Info("bilifollow bulk follow starting")

	// Validate credentials, falling back to the credential store
	cred := &cfg.AutoFollowCredential
	if err := cred.Validate(config.SectionAutoFollow); err != nil {
		stored := retrieveStoredCredential(config.SectionAutoFollow)
		if stored == nil {
			logger.WithError(err).Error("missing auto-follow credentials")
			ui.PrintError("Missing auto-follow credentials", err.Error())
			os.Exit(1)
		}
		cred = stored
	}

	ctx := context.Background()
	client := bilibili.NewClient(cred, cfg.Export.RequestTimeout, logger.GetLogger())

	// Confirm the credential is alive before touching any target
	info, err := client.MyInfo(ctx)
	if err != nil {
		logger.WithError(err).Error("credential check failed")
		ui.PrintError("Credential check failed", err.Error())
		os.Exit(1)
	}
	ui.PrintInfo("Account", fmt.Sprintf("%s (uid %d)", info.Name, info.Mid))

	// Load the exported followings list
	store := storage.NewManager(input, logger.GetLogger())
	loaded, err := store.Load()
	if err != nil {
		logger.WithError(err).Error("failed to load followings file")
		ui.PrintError("Failed to load followings file", err.Error())
		os.Exit(1)
	}
	ui.PrintInfo("Targets", fmt.Sprintf("%d", len(loaded.Records)))
	if loaded.Skipped > 0 {
		ui.PrintWarning(fmt.Sprintf("Ignored %d invalid entries in %s", loaded.Skipped, store.Path()))
	}

	// Set up checkpointing so an interrupted run can resume
	checkpoints, err := checkpoint.NewManager(cred.UID)
	if err != nil {
		logger.WithError(err).Warn("checkpointing unavailable, run will not be resumable")
		checkpoints = nil
	}
	if checkpoints != nil {
		if *noResume {
			if err := checkpoints.Delete(); err != nil {
				logger.WithError(err).Warn("failed to discard checkpoint")
			}
		} else if checkpoints.Exists() {
			ui.PrintInfo("Resuming", "previous run state found")
		}
		if !checkpoints.Exists() {
			if _, err := checkpoints.Create(cred.UID, store.Path()); err != nil {
				logger.WithError(err).Warn("failed to create checkpoint")
			}
		}
	}

	driver := follow.New(client, cfg.Pacing, logger.GetLogger())
	if checkpoints != nil {
		driver.SetCheckpoints(checkpoints)
	}

	report, err := driver.Run(ctx, loaded.Records)
	if err != nil {
		logger.WithError(err).Error("run interrupted")
		ui.PrintError("Run interrupted", err.Error())
	}

	logger.WithFields(map[string]interface{}{
		"successful": report.Successful,
		"failed":     report.Failed,
	}).Info("bulk follow finished")
	ui.PrintSummary(report.Successful, report.Failed, loaded.Skipped)

	if err != nil {
		os.Exit(1)
	}
}

// storeCredentials prompts for a credential set and saves it under the
// auto-follow section label.
func storeCredentials() error {
	account, err := auth.PromptAccount(config.SectionAutoFollow)
	if err != nil {
		return err
	}

	mgr, err := auth.NewManager()
	if err != nil {
		return err
	}

	return mgr.Store(account)
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
