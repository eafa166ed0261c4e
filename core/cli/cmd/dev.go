package cmd

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/hyperterse/graphgate/core/logger"
)

const reloadDebounce = 500 * time.Millisecond

var devCmd = &cobra.Command{
	Use:           "dev [config]",
	Short:         "Run the gateway in development mode",
	Long:          `Run the gateway and hot-reload the model whenever the config file changes. The listeners stay up across reloads.`,
	RunE:          runDevServer,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(devCmd)
	addServerFlags(devCmd)
}

func runDevServer(cmd *cobra.Command, args []string) error {
	log := logger.New("dev")

	configPath, err := resolveConfigPath(args)
	if err != nil {
		return err
	}

	rt, telemetry, err := PrepareRuntime(cmd.Context(), configPath)
	if err != nil {
		return err
	}
	defer shutdownTelemetry(telemetry)

	if err := rt.StartAsync(); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		_ = rt.Stop()
		return err
	}
	defer watcher.Close()

	// Editors often replace the file instead of writing it, so watch the directory.
	if err := watcher.Add(filepath.Dir(configPath)); err != nil {
		_ = rt.Stop()
		return err
	}

	reload := make(chan struct{}, 1)
	go watchConfig(watcher, configPath, reload)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	log.Infof("Watching %s for changes...", configPath)

	for {
		select {
		case <-sigChan:
			return rt.Stop()
		case <-reload:
			log.Infof("Config changed, reloading...")
			model, err := loadModel(configPath)
			if err != nil {
				log.Warnf("Keeping previous model: %v", err)
				continue
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			err = rt.ReloadModel(ctx, model)
			cancel()
			if err != nil {
				log.Warnf("Keeping previous model: %v", err)
			}
		}
	}
}

// watchConfig signals reload once events for configPath settle
func watchConfig(watcher *fsnotify.Watcher, configPath string, reload chan<- struct{}) {
	log := logger.New("dev")
	var debounce *time.Timer
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != configPath {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(reloadDebounce, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Warnf("Watcher error: %v", err)
		}
	}
}
