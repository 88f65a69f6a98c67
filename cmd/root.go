package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pyama86/snowpanel/handler"
	"github.com/pyama86/snowpanel/presentation/tui"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logPath    string
)

var rootCmd = &cobra.Command{
	Use:          "snowpanel",
	Short:        "snowpanel is a terminal client for ServiceNow incidents",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	// デフォルトはホームディレクトリのsnowpanel.toml
	home, err := os.UserHomeDir()
	if err != nil {
		slog.Error("Failed to get user home directory", slog.Any("error", err))
		os.Exit(1)
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", path.Join(home, "snowpanel.toml"), "config file path")
	rootCmd.Flags().StringVar(&logPath, "log-file", defaultLogPath(), "log file path while the terminal UI is running")
}

func defaultLogPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "snowpanel.log"
	}
	return filepath.Join(dir, "snowpanel", "snowpanel.log")
}

// newApp はサブコマンド用のAppを作る。通知は画面ではなくstderrに出す
func newApp(cmd *cobra.Command) (*handler.App, error) {
	app, err := handler.NewApp(configPath)
	if err != nil {
		return nil, err
	}
	app.Panel.SetNotifier(handler.NotifierFunc(func(message string) {
		fmt.Fprintln(cmd.ErrOrStderr(), message)
	}))
	return app, nil
}

func run(ctx context.Context) error {
	// 画面が崩れないようにログはファイルへ出す
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()
	slog.SetDefault(slog.New(slog.NewTextHandler(logFile, nil)))

	app, err := handler.NewApp(configPath)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := tui.New(ctx, app.Panel, app.Session, app.Config.UI.DarkMode)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	app.Panel.SetNotifier(handler.NotifierFunc(func(message string) {
		program.Send(tui.NoticeMsg(message))
	}))

	// 事前にセッションクッキーが設定されていれば通信せずにログイン済みになる。
	// Watchより先に済ませ、最初の一覧取得をWatchに任せる
	if app.Config.Session.Cookie != "" {
		if err := app.Session.Login(ctx); err != nil {
			slog.Error("Failed to login", slog.Any("err", err))
		}
	}
	go app.Panel.Watch(ctx, func() {
		program.Send(tui.RefreshMsg{})
	})

	slog.Info("Terminal UI started")
	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("failed to run terminal ui: %w", err)
	}
	return nil
}
