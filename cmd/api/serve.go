package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xavierca1/assistant-dashboard/internal/infra/http/handlers"
	"github.com/xavierca1/assistant-dashboard/internal/infra/mail"
	"github.com/xavierca1/assistant-dashboard/internal/infra/queue"
	"github.com/xavierca1/assistant-dashboard/internal/infra/worker"
	"github.com/xavierca1/assistant-dashboard/internal/usecase"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the background refresh loop",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func serve(ctx context.Context) error {
	store, db, err := openSnapshotStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open snapshot store: %w", err)
	}
	defer db.Close()

	client := newBackendClient(cfg, logger)

	// 1. Lead list, warmed from the snapshot before any network call
	reconciler := usecase.NewLeadReconciler(client, store, cfg.Fetch.Timeout, logger)
	warmed := reconciler.Warm(ctx)
	logger.Info("lead list warmed from snapshot",
		zap.String("driver", cfg.Snapshot.Driver),
		zap.Int("leads", len(warmed)),
	)

	// 2. Follow-up queue (optional)
	var (
		publisher  usecase.FollowUpPublisher
		rabbitConn *amqp.Connection
		followUps  *queue.Worker
	)
	if cfg.RabbitMQ.URL != "" {
		rabbit, err := queue.NewRabbitMQ(cfg.RabbitMQ.URL)
		if err != nil {
			return err
		}
		defer rabbit.Close()

		rabbitConn = rabbit.Conn
		publisher = queue.NewProducer(rabbit.Ch)

		if cfg.MailEnabled() {
			sender := mail.NewEmailSender(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.User, cfg.Mail.Pass, cfg.Mail.From)
			followUps = queue.NewWorker(rabbit.Ch, sender, logger)
		} else {
			logger.Warn("mail is not configured, follow-ups stay queued for another consumer")
		}
	}

	drafter, err := newDrafter(ctx, cfg, client)
	if err != nil {
		return err
	}

	// 3. UseCases
	board := usecase.NewConversationBoard()
	loadConversations := usecase.NewLoadConversationsUseCase(client, client, board, cfg.Fetch.Timeout, logger)
	createLead := usecase.NewCreateLeadUseCase(client, reconciler, publisher, cfg.Refresh.AfterCreate, logger)
	sendMessage := usecase.NewSendMessageUseCase(client, loadConversations, logger)
	draftReply := usecase.NewDraftReplyUseCase(board, drafter)

	refresher := worker.NewRefreshWorker(reconciler, loadConversations, cfg.Refresh.Interval, logger)

	// 4. Handlers
	var limiter *handlers.RateLimiter
	if cfg.Drafter.RatePerMinute > 0 {
		limiter = handlers.NewRateLimiter(cfg.Drafter.RatePerMinute, time.Minute)
	}

	router := newRouter(routes{
		Leads:         handlers.NewLeadHandler(reconciler, createLead, cfg.Leads.ActivityWindow, logger),
		Conversations: handlers.NewConversationHandler(board, cfg.Conversations.OngoingWindow),
		Messages:      handlers.NewMessageHandler(sendMessage, logger),
		Drafts:        handlers.NewDraftHandler(draftReply, logger),
		Refresh:       handlers.NewRefreshHandler(refresher, reconciler, board),
		Health:        handlers.NewHealthHandler(db, cfg.Snapshot.Driver, rabbitConn, cfg.Backend.URL),
		DraftLimiter:  limiter,
		CORSOrigins:   cfg.AllowedOrigins(),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		refresher.Start(gctx)
		return nil
	})

	if followUps != nil {
		g.Go(func() error {
			return followUps.Start(gctx, queue.QueueName)
		})
	}

	g.Go(func() error {
		logger.Info("server listening",
			zap.Int("port", cfg.Server.Port),
			zap.String("drafter", cfg.Drafter.Provider),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
