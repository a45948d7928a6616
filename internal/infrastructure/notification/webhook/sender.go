// Package webhook реализует port.PayloadSender для Discord-совместимых
// webhook'ов.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
	"unicode/utf8"
)

const (
	// discordMessageLimit - лимит Discord на длину content
	discordMessageLimit = 2000

	// codeFence оборачивает отчет в моноширинный блок
	codeFence = "```"

	// truncationMarker ставится в конец обрезанного сообщения
	truncationMarker = "\n... (truncated)"
)

// Sender отправляет текстовые уведомления в webhook
type Sender struct {
	url  string
	http *http.Client
}

// NewSender создает новый Sender
func NewSender(url string, timeout time.Duration) *Sender {
	return &Sender{
		url: url,
		http: &http.Client{
			Timeout: timeout,
		},
	}
}

type webhookPayload struct {
	Content string `json:"content"`
}

// Send доставляет текстовое содержимое.
// Содержимое оборачивается в code fence и обрезается под лимит Discord,
// маркер обрезки всегда помещается внутрь блока.
func (s *Sender) Send(ctx context.Context, content string) error {
	body, err := json.Marshal(webhookPayload{Content: FormatContent(content)})
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	// Discord отвечает 204 No Content на успешную доставку
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}

// FormatContent оборачивает текст в code fence и обрезает под лимит
func FormatContent(content string) string {
	wrapped := codeFence + "\n" + content + codeFence

	if len(wrapped) <= discordMessageLimit {
		return wrapped
	}

	// Резервируем место под маркер и закрывающий fence
	budget := discordMessageLimit - len(truncationMarker) - len(codeFence) - len(codeFence) - 1
	// Срез по байтам может разрезать multi-byte руну, отступаем до границы
	for budget > 0 && !utf8.RuneStart(content[budget]) {
		budget--
	}
	return codeFence + "\n" + content[:budget] + truncationMarker + codeFence
}
