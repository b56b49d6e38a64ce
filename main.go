package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"

	tea "github.com/charmbracelet/bubbletea"

	"villamitre/internal/api"
	"villamitre/internal/auth"
	"villamitre/internal/config"
	"villamitre/internal/service"
	"villamitre/internal/store"
	"villamitre/internal/tui"
	"villamitre/internal/workout"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if errors.Is(err, config.ErrNoConfig) {
		fmt.Println("No config file found. Creating example config...")
		if err := config.CreateExample(); err != nil {
			return fmt.Errorf("creating example config: %w", err)
		}
		configDir, _ := config.GetConfigDir()
		fmt.Printf("\nPlease edit the config file at:\n  %s/config.json\n\n", configDir)
		fmt.Println("You need to add your member DNI and password.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Validate config
	if err := cfg.Validate(); err != nil {
		configDir, _ := config.GetConfigDir()
		fmt.Printf("Config validation failed: %v\n\n", err)
		fmt.Printf("Please edit the config file at:\n  %s/config.json\n", configDir)
		return nil
	}

	// The TUI owns the terminal, so the logger writes to a file
	closeLog, err := setupLogging()
	if err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}
	defer closeLog()

	// Open database
	db, err := store.Open()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	oauthCfg := auth.NewOAuthConfig(auth.Config{
		BaseURL:  cfg.API.BaseURL,
		ClientID: cfg.API.ClientID,
	})

	// Check for existing auth
	storedAuth, err := db.GetAuth()
	if errors.Is(err, store.ErrNoAuth) {
		fmt.Println("No authentication found. Logging in...")
		if err := login(ctx, db, oauthCfg, cfg); err != nil {
			return fmt.Errorf("login: %w", err)
		}
		storedAuth, err = db.GetAuth()
		if err != nil {
			return fmt.Errorf("fetching auth after login: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("checking auth: %w", err)
	}

	token := &oauth2.Token{
		AccessToken:  storedAuth.AccessToken,
		RefreshToken: storedAuth.RefreshToken,
		Expiry:       storedAuth.ExpiresAt,
	}

	// Token source with auto-refresh; refreshed tokens go back to the db
	tokenSource := auth.NewTokenSource(oauthCfg, token, func(newToken *oauth2.Token) error {
		return db.UpdateTokens(newToken.AccessToken, newToken.RefreshToken, newToken.Expiry)
	})

	if _, err := tokenSource.Token(); err != nil {
		fmt.Println("Stored session is invalid or expired. Logging in again...")
		if err := login(ctx, db, oauthCfg, cfg); err != nil {
			return fmt.Errorf("re-login: %w", err)
		}
	}

	// Create services
	client := api.NewClient(cfg.API.BaseURL, tokenSource)
	club := service.NewClubService(client, db)

	engine := workout.NewEngine(client, db, workout.DefaultDraftKey)
	defer engine.Close()

	// Launch TUI
	app := tui.NewApp(club, engine, cfg.Gym)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}

	return nil
}

func login(ctx context.Context, db *store.Store, oauthCfg *oauth2.Config, cfg *config.Config) error {
	token, err := auth.Login(ctx, oauthCfg, cfg.Member.DNI, cfg.Member.Password)
	if err != nil {
		return err
	}

	storedAuth := &store.Auth{
		MemberDNI:    cfg.Member.DNI,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry,
	}

	if err := db.SaveAuth(storedAuth); err != nil {
		return fmt.Errorf("saving auth: %w", err)
	}

	fmt.Printf("Logged in as member %s\n", cfg.Member.DNI)
	return nil
}

func setupLogging() (func(), error) {
	configDir, err := config.GetConfigDir()
	if err != nil {
		return nil, err
	}
	f, err := os.OpenFile(filepath.Join(configDir, "app.log"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, err
	}
	log.SetOutput(f)
	return func() { f.Close() }, nil
}
