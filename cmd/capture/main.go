package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/codebuildervaibhav/meeting-capture/internal/bot"
	"github.com/codebuildervaibhav/meeting-capture/internal/capture"
	"github.com/codebuildervaibhav/meeting-capture/internal/cleanup"
	"github.com/codebuildervaibhav/meeting-capture/internal/config"
	"github.com/codebuildervaibhav/meeting-capture/internal/dom"
	"github.com/codebuildervaibhav/meeting-capture/internal/meeting"
	"github.com/codebuildervaibhav/meeting-capture/internal/notify"
	"github.com/codebuildervaibhav/meeting-capture/internal/record"
	"github.com/codebuildervaibhav/meeting-capture/internal/selectors"
	"github.com/codebuildervaibhav/meeting-capture/internal/store"
	"github.com/codebuildervaibhav/meeting-capture/internal/tasks"
	"github.com/codebuildervaibhav/meeting-capture/internal/types"
	"github.com/codebuildervaibhav/meeting-capture/internal/zoom"
)

var (
	flagConfig      string
	flagBotName     string
	flagManual      bool
	flagHeadless    bool
	flagRecordAudio bool
	flagMaxWaiting  int
	flagMinRecord   int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "capture <meetlink>",
		Short: "Join a Zoom meeting and capture its transcript and chat",
		Args:  cobra.ExactArgs(1),
		RunE:  runCapture,
	}

	rootCmd.Flags().StringVar(&flagConfig, "config", "config/config.yaml", "Path to the configuration file")
	rootCmd.Flags().StringVar(&flagBotName, "bot-name", "", "Display name of the bot in the meeting")
	rootCmd.Flags().BoolVar(&flagManual, "manual", false, "Do not enable captions automatically")
	rootCmd.Flags().BoolVar(&flagHeadless, "headless", true, "Run the browser headless")
	rootCmd.Flags().BoolVar(&flagRecordAudio, "record-audio", false, "Record meeting audio with ffmpeg")
	rootCmd.Flags().IntVar(&flagMaxWaiting, "max-waiting-time", 0, "Seconds to wait for admission before giving up")
	rootCmd.Flags().IntVar(&flagMinRecord, "min-record-time", 0, "Seconds to stay in the meeting once admitted")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCapture(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}
	applyFlags(cmd, cfg)

	sel, err := selectors.Load(cfg.SelectorsFile)
	if err != nil {
		return fmt.Errorf("failed to load selectors: %v", err)
	}

	link, err := bot.ParseMeetingLink(args[0])
	if err != nil {
		return err
	}

	if err := cleanup.EnsureOutputDirExists(cfg.Storage.OutputDir); err != nil {
		return fmt.Errorf("failed to create output directory: %v", err)
	}

	st, err := store.NewStore(cfg.Storage.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %v", err)
	}
	defer st.Close()

	if err := st.Set(store.KeyOperationMode, cfg.Capture.OperationMode); err != nil {
		log.Printf("Failed to record operation mode: %v", err)
	}

	cleaner := cleanup.NewScheduler(cfg.Storage.OutputDir, cfg.Cleanup.IntervalMinutes, cfg.Cleanup.MaxAgeHours)
	cleaner.Start()
	defer cleaner.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	page, closeBrowser, err := dom.NewBrowser(ctx, dom.BrowserOptions{
		Headless:    cfg.Browser.Headless,
		UserAgent:   cfg.Browser.UserAgent,
		UserDataDir: cfg.Browser.UserDataDir,
	})
	if err != nil {
		return err
	}
	defer closeBrowser()

	loop := tasks.NewLoop()
	session := capture.NewSession(st)
	notifier := notify.NewPageNotifier(page, st)
	ui := zoom.NewUIAutomation(page, sel)
	observer := dom.NewPollObserver(page, cfg.ObserverPoll())

	transcriptPipe := capture.NewTranscriptPipeline(ctx, loop, session, zoom.NewCaptions(page, sel), notifier, cfg.SettleDelay())
	chatPipe := capture.NewChatPipeline(ctx, loop, session, zoom.NewChat(page, sel), notifier, cfg.ChatDebounce())

	controller := meeting.NewController(meeting.Config{
		OperationMode:     cfg.Capture.OperationMode,
		SettleDelay:       cfg.SettleDelay(),
		ChatDebounce:      cfg.ChatDebounce(),
		RetryInterval:     cfg.RetryInterval(),
		UserNamePoll:      cfg.UserNamePoll(),
		CaptionSetupDelay: cfg.CaptionSetupDelay(),
	}, sel, page, observer, observer, ui, notifier, loop, session, transcriptPipe, chatPipe)

	sessionID := uuid.New().String()
	var recorder *record.Recorder
	if cfg.Recording.Enabled {
		recorder = record.NewRecorder(filepath.Join(cfg.Storage.OutputDir, sessionID+".opus"), cfg.Recording.BitRate)
	}

	meetBot := bot.New(page, bot.Config{
		Name:               cfg.Bot.Name,
		MaxWaitingTime:     cfg.MaxWaitingTime(),
		MinRecordTime:      cfg.MinRecordTime(),
		LowAttendanceGrace: cfg.LowAttendanceGrace(),
	})

	if err := meetBot.Join(ctx, link); err != nil {
		return err
	}

	go func() {
		if err := controller.Run(ctx); err != nil && ctx.Err() == nil {
			log.Printf("Lifecycle controller failed: %v", err)
		}
	}()

	monitorDone := make(chan string, 1)
	go func() {
		for {
			reason := meetBot.Monitor(ctx, func() {
				if recorder != nil {
					if err := recorder.Start(); err != nil {
						log.Printf("Failed to start recording: %v", err)
					}
				}
			})
			if meetBot.NeedRetry() {
				if err := meetBot.RetryJoin(ctx, link); err != nil {
					log.Printf("Retry join failed: %v", err)
					monitorDone <- reason
					return
				}
				continue
			}
			monitorDone <- reason
			return
		}
	}()

	select {
	case <-controller.Done():
		log.Println("Meeting end control clicked.")
	case reason := <-monitorDone:
		log.Printf("Monitoring finished: %s", reason)
	case <-ctx.Done():
		log.Println("Shutting down gracefully...")
	}

	// Final teardown: commit pending buffer, flush logs, stop capture
	controller.EndMeeting()
	loop.Stop()
	if recorder != nil {
		recorder.Stop()
	}

	return export(cfg, st, session, recorder, sessionID)
}

// export writes the meeting JSON, bundles the artifacts into a tar and
// records the meeting in the history table.
func export(cfg *config.Config, st *store.Store, session *capture.Session, recorder *record.Recorder, sessionID string) error {
	endStamp := types.NowStamp()
	exporter := store.NewExporter(cfg.Storage.OutputDir)

	data := &store.ExportData{
		Title:            session.Metadata.MeetingTitle,
		MeetingStartTime: session.Metadata.MeetingStartTimeStamp,
		MeetingEndTime:   endStamp,
		Transcript:       session.Transcript,
		ChatMessages:     session.ChatMessages,
	}

	jsonPath, err := exporter.Export(data)
	if err != nil {
		return fmt.Errorf("failed to export transcript: %v", err)
	}
	log.Printf("Transcript saved to %s", jsonPath)

	audioPath := ""
	if recorder != nil {
		audioPath = recorder.OutputPath()
	}
	tarPath, err := exporter.Archive(jsonPath, audioPath)
	if err != nil {
		return fmt.Errorf("failed to archive artifacts: %v", err)
	}
	log.Printf("Artifacts archived to %s", tarPath)

	err = st.RecordMeeting(sessionID, session.Metadata.MeetingTitle,
		session.Metadata.MeetingStartTimeStamp, endStamp,
		len(session.Transcript), len(session.ChatMessages), tarPath)
	if err != nil {
		log.Printf("Failed to record meeting history: %v", err)
	}

	return nil
}

// applyFlags overlays explicitly set CLI flags onto the config.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("bot-name") {
		cfg.Bot.Name = flagBotName
	}
	if cmd.Flags().Changed("manual") && flagManual {
		cfg.Capture.OperationMode = types.ModeManual
	}
	if cmd.Flags().Changed("headless") {
		cfg.Browser.Headless = flagHeadless
	}
	if cmd.Flags().Changed("record-audio") {
		cfg.Recording.Enabled = flagRecordAudio
	}
	if cmd.Flags().Changed("max-waiting-time") {
		cfg.Bot.MaxWaitingTimeSeconds = flagMaxWaiting
	}
	if cmd.Flags().Changed("min-record-time") {
		cfg.Bot.MinRecordTimeSeconds = flagMinRecord
	}
}
