package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"x0x0/internal/app"
	"x0x0/internal/config"
	"x0x0/internal/manager"
	"x0x0/internal/models"
	"x0x0/internal/remote"
	"x0x0/internal/storage"
	"x0x0/pkg/logger"
)

const usage = `x0x0 - anonymous file hosting client

Usage:
  x0x0 upload [-secret] [-retention hours] <path>
  x0x0 list
  x0x0 show <id>
  x0x0 delete <id>
  x0x0 share <id>
  x0x0 copy-url <id>
  x0x0 copy-token <id>
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	log := logger.New()
	cfg := config.DefaultConfig()
	if err := cfg.Validate(); err != nil {
		log.ErrorWithError("Invalid configuration", err)
		os.Exit(1)
	}

	store, err := storage.NewSQLiteStore(cfg.DatabasePath)
	if err != nil {
		log.ErrorWithError("Failed to open local store", err)
		os.Exit(1)
	}
	defer store.Close()

	client := remote.NewHTTPClient(cfg.Endpoint, cfg.UserAgent)
	registry := manager.NewRegistryManager(store)
	uploads := manager.NewUploadManager(client, registry, cfg.MaxFileSize)
	frontend := &consoleFrontend{}

	controller := app.NewController(app.Deps{
		Registry:   registry,
		Uploads:    uploads,
		Cache:      manager.NewCacheManager(client, cfg.CacheDir),
		Shares:     manager.NewShareManager(store, frontend),
		Settings:   manager.NewSettingsManager(store),
		Expiration: manager.NewExpirationManager(),
		Client:     client,
		Frontend:   frontend,
		Clipboard:  frontend,
	})
	defer controller.Shutdown()

	ctx := context.Background()
	if err := run(ctx, controller, cfg, os.Args[1], os.Args[2:]); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, controller *app.Controller, cfg *config.AppConfig, command string, args []string) error {
	switch command {
	case "upload":
		return runUpload(ctx, controller, cfg, args)
	case "list":
		return runList(controller)
	case "show":
		return runShow(ctx, controller, args)
	case "delete":
		return withID(args, func(id string) error { return controller.DeleteFile(ctx, id) })
	case "share":
		return withID(args, func(id string) error { return controller.ShareFile(ctx, id) })
	case "copy-url":
		return withID(args, func(id string) error { return controller.CopyURL(ctx, id) })
	case "copy-token":
		return withID(args, func(id string) error { return controller.CopyToken(ctx, id) })
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func runUpload(ctx context.Context, controller *app.Controller, cfg *config.AppConfig, args []string) error {
	flags := flag.NewFlagSet("upload", flag.ExitOnError)
	secret := flags.Bool("secret", cfg.DefaultSecret, "request a hard-to-guess URL")
	retention := flags.Int("retention", cfg.DefaultRetention, "retention in hours (0 = host default)")
	flags.Parse(args)

	if flags.NArg() != 1 {
		return fmt.Errorf("upload expects exactly one file path")
	}

	picked, err := pickFile(cfg, flags.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}

	outcome, err := controller.UploadFile(ctx, picked, manager.UploadOptions{
		Secret:    *secret,
		Retention: *retention,
	})
	if err != nil {
		return err
	}
	if outcome.Kind == models.OutcomeUploaded {
		fmt.Println(outcome.Record.RemoteURL)
	}
	return nil
}

func runList(controller *app.Controller) error {
	controller.OnFocus()
	files := controller.Files()
	if len(files) == 0 {
		fmt.Println("No uploaded files.")
		return nil
	}
	for _, record := range files {
		fmt.Printf("%s  %-30s  %-10s  %s  expires %s\n",
			shortID(record.ID), record.Name, models.FormatSize(record.Size),
			record.RemoteURL, controller.ExpiryLabel(record))
	}
	return nil
}

// shortID abbreviates an id for the listing; migrated records are not
// guaranteed the full 32-character form
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func runShow(ctx context.Context, controller *app.Controller, args []string) error {
	return withID(args, func(id string) error {
		record, path, err := controller.ViewFile(ctx, id)
		if err != nil {
			return err
		}
		fmt.Printf("File name  %s\n", record.Name)
		fmt.Printf("URL        %s\n", record.RemoteURL)
		fmt.Printf("Type       %s\n", record.MimeType)
		fmt.Printf("Size       %s\n", models.FormatSize(record.Size))
		fmt.Printf("Token      %s\n", record.Token)
		fmt.Printf("Expires    %s\n", controller.ExpiryLabel(record))
		fmt.Printf("URI        %s\n", path)
		return nil
	})
}

func withID(args []string, fn func(id string) error) error {
	if len(args) != 1 {
		return fmt.Errorf("expected exactly one file id")
	}
	id := args[0]
	return fn(id)
}

// pickFile plays the document picker's role for the CLI: it validates the
// source and copies it into the cache directory, which becomes the record's
// local URI
func pickFile(cfg *config.AppConfig, path string) (models.PickedFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return models.PickedFile{}, fmt.Errorf("cannot read %s: %w", path, err)
	}
	if info.IsDir() {
		return models.PickedFile{}, fmt.Errorf("%s is a directory", path)
	}

	name := filepath.Base(path)
	mimeType := mime.TypeByExtension(filepath.Ext(name))
	if mimeType == "" {
		mimeType = remote.DefaultMimeType
	}

	cached := filepath.Join(cfg.CacheDir, name)
	if err := copyFile(path, cached); err != nil {
		return models.PickedFile{}, fmt.Errorf("failed to cache %s: %w", name, err)
	}

	return models.PickedFile{
		Name:     name,
		Size:     info.Size(),
		MimeType: mimeType,
		URI:      cached,
	}, nil
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// consoleFrontend renders controller events on the terminal. It also stands
// in for the clipboard and the share sheet, which have no CLI equivalent.
type consoleFrontend struct {
	lastPercent int
}

func (f *consoleFrontend) SetStatus(status string) {}

func (f *consoleFrontend) UpdateFiles(files []*models.FileRecord) {}

func (f *consoleFrontend) ShowProgress(percent int) {
	if percent == f.lastPercent {
		return
	}
	f.lastPercent = percent
	fmt.Fprintf(os.Stderr, "\ruploading... %3d%%", percent)
	if percent >= 100 {
		fmt.Fprintln(os.Stderr)
	}
}

func (f *consoleFrontend) ShowToast(message string) {
	fmt.Fprintln(os.Stderr, message)
}

func (f *consoleFrontend) ShowAlert(title, message string) {
	fmt.Fprintf(os.Stderr, "%s: %s\n", title, message)
}

func (f *consoleFrontend) SetString(text string) error {
	// No clipboard on a plain terminal; print the value instead
	fmt.Println(text)
	return nil
}

func (f *consoleFrontend) Share(title, message string) error {
	fmt.Printf("%s: %s\n", title, message)
	return nil
}
