package clipboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	sysclip "github.com/atotto/clipboard"
	"go.uber.org/zap"

	"github.com/radieske/value-bet-feed/internal/feed"
)

// ErrUnavailable indica que o ambiente não oferece área de transferência
// (sem xclip/xsel/wl-copy, sessão headless, permissão negada).
var ErrUnavailable = errors.New("clipboard unavailable")

const (
	MessageCopied  = "Aposta copiada ✅"
	MessageBlocked = "Não consegui copiar automaticamente. Selecione e copie a linha manualmente."

	// DefaultNoticeTTL é por quanto tempo a notificação fica visível.
	DefaultNoticeTTL = 3 * time.Second
)

// Port é a capacidade de escrever texto na área de transferência.
type Port interface {
	Write(ctx context.Context, text string) error
}

// System usa a área de transferência do sistema operacional.
type System struct{}

func (System) Write(ctx context.Context, text string) error {
	if sysclip.Unsupported {
		return ErrUnavailable
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := sysclip.WriteAll(text); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Memory guarda o último texto escrito. Útil no servidor (não há área de
// transferência) e em testes.
type Memory struct {
	Last string
	Err  error
}

func (m *Memory) Write(_ context.Context, text string) error {
	if m.Err != nil {
		return m.Err
	}
	m.Last = text
	return nil
}

// Copier escreve a linha exportada no Port e traduz o resultado numa
// notificação transitória. Falha de cópia nunca é fatal.
type Copier struct {
	Port Port
	Log  *zap.Logger
	TTL  time.Duration
	Now  func() time.Time

	// OnResult recebe "copied" ou "blocked" (métricas).
	OnResult func(outcome string)
}

func NewCopier(port Port, log *zap.Logger) *Copier {
	return &Copier{Port: port, Log: log, TTL: DefaultNoticeTTL, Now: time.Now}
}

// Copy tenta copiar text e devolve a notificação a exibir.
func (c *Copier) Copy(ctx context.Context, text string) feed.Notice {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	ttl := c.TTL
	if ttl <= 0 {
		ttl = DefaultNoticeTTL
	}
	expires := now().Add(ttl)

	if err := c.Port.Write(ctx, text); err != nil {
		if c.Log != nil {
			c.Log.Warn("clipboard write failed", zap.Error(err))
		}
		c.report("blocked")
		return feed.Notice{Kind: feed.NoticeCopyBlocked, Message: MessageBlocked, ExpiresAt: expires}
	}
	c.report("copied")
	return feed.Notice{Kind: feed.NoticeCopied, Message: MessageCopied, ExpiresAt: expires}
}

func (c *Copier) report(outcome string) {
	if c.OnResult != nil {
		c.OnResult(outcome)
	}
}
