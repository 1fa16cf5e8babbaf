// Package bulkmailhttp exposes the mailing endpoints over Fiber, including
// the server-sent events progress feed.
package bulkmailhttp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/asyncx"
	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/bulkmail"
	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/bulkmail/bulkmailsrv"
	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/errx"
	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/logx"
)

type Handler struct {
	service     *bulkmailsrv.Service
	tracker     *bulkmail.Tracker
	broadcaster *bulkmail.Broadcaster
}

func NewHandler(service *bulkmailsrv.Service, tracker *bulkmail.Tracker, broadcaster *bulkmail.Broadcaster) *Handler {
	return &Handler{
		service:     service,
		tracker:     tracker,
		broadcaster: broadcaster,
	}
}

func (h *Handler) RegisterRoutes(app *fiber.App) {
	mailing := app.Group("/api/v1/mailing")
	mailing.Post("/upload", h.uploadBatch)
	mailing.Post("/retry-failed", h.retryFailed)
	mailing.Get("/progress", h.progress)
	mailing.Get("/failed-emails", h.failedEmails)
}

// uploadBatch runs the batch synchronously: the response is only written
// once every recipient has been processed.
func (h *Handler) uploadBatch(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return errx.Validation("missing file upload: expected multipart field 'file'")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return errx.Validation("failed to open uploaded file").WithDetail("cause", err.Error())
	}
	defer file.Close()

	processed, err := h.service.RunUploadBatch(c.Context(), fileHeader.Filename, file)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message":   "batch complete",
		"processed": processed,
	})
}

// retryFailed kicks the retry batch off in the background and acknowledges
// immediately. Progress is observable on the progress feed.
func (h *Handler) retryFailed(c *fiber.Ctx) error {
	asyncx.DoCtx(context.Background(), func(ctx context.Context) {
		processed, err := h.service.RunFailedRetryBatch(ctx)
		if err != nil {
			logx.WithError(err).Error("bulkmail: retry batch failed")
			return
		}
		logx.WithField("processed", processed).Info("bulkmail: retry batch complete")
	})

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message": "retry batch started",
	})
}

// progress streams progress snapshots as server-sent events. The current
// snapshot is pushed on connect, then every update until the client
// disconnects.
func (h *Handler) progress(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	sub := h.broadcaster.Subscribe()
	initial, _ := json.Marshal(h.tracker.Snapshot())

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer h.broadcaster.Unsubscribe(sub)

		if err := writeEvent(w, initial); err != nil {
			return
		}

		for payload := range sub.C {
			if err := writeEvent(w, payload); err != nil {
				return
			}
		}
	}))

	return nil
}

func (h *Handler) failedEmails(c *fiber.Ctx) error {
	records, err := h.service.FailedOutcomes(c.Context())
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data":  records,
		"count": len(records),
	})
}

func writeEvent(w *bufio.Writer, payload []byte) error {
	if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
		return err
	}
	return w.Flush()
}
