package services

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mobilka/subscription-portal/internal/lib/smtp"
	"github.com/mobilka/subscription-portal/internal/models"
)

type TransportMock struct{ mock.Mock }

func (m *TransportMock) Connect() (smtp.Client, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(smtp.Client), args.Error(1)
}
func (m *TransportMock) GetSMTPUser() string {
	return m.Called().String(0)
}

type ClientMock struct{ mock.Mock }

func (m *ClientMock) Mail(from string) error { return m.Called(from).Error(0) }
func (m *ClientMock) Rcpt(to string) error   { return m.Called(to).Error(0) }
func (m *ClientMock) Data() (io.WriteCloser, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.WriteCloser), args.Error(1)
}
func (m *ClientMock) Quit() error  { return m.Called().Error(0) }
func (m *ClientMock) Close() error { return m.Called().Error(0) }

type writeCloserMock struct{ b *strings.Builder }

func (w *writeCloserMock) Write(p []byte) (int, error) { return w.b.WriteString(string(p)) }
func (w *writeCloserMock) Close() error                { return nil }

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func resetJobBody(t *testing.T) []byte {
	body, err := json.Marshal(models.ResetEmailJob{
		Email: "user@example.com",
		Name:  "Test User",
		Token: "raw-token",
	})
	require.NoError(t, err)
	return body
}

func TestSenderService_SendPasswordResetEmail(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		transport := new(TransportMock)
		client := new(ClientMock)
		svc := NewSenderService(transport, "http://localhost:3000", newNoopLogger())

		var written strings.Builder
		transport.On("Connect").Return(client, nil).Once()
		transport.On("GetSMTPUser").Return("noreply@example.com")
		client.On("Mail", "noreply@example.com").Return(nil).Once()
		client.On("Rcpt", "user@example.com").Return(nil).Once()
		client.On("Data").Return(&writeCloserMock{b: &written}, nil).Once()
		client.On("Quit").Return(nil).Once()
		client.On("Close").Return(nil).Once()

		err := svc.SendPasswordResetEmail(resetJobBody(t))
		require.NoError(t, err)

		message := written.String()
		assert.Contains(t, message, "To: user@example.com")
		assert.Contains(t, message, "Hello Test User")
		assert.Contains(t, message, "http://localhost:3000/reset-password/raw-token")
		client.AssertExpectations(t)
	})

	t.Run("broken payload", func(t *testing.T) {
		transport := new(TransportMock)
		svc := NewSenderService(transport, "http://localhost:3000", newNoopLogger())

		err := svc.SendPasswordResetEmail([]byte("not-json"))
		assert.Error(t, err)
		transport.AssertNotCalled(t, "Connect")
	})

	t.Run("connect failure", func(t *testing.T) {
		transport := new(TransportMock)
		svc := NewSenderService(transport, "http://localhost:3000", newNoopLogger())

		transport.On("GetSMTPUser").Return("noreply@example.com")
		transport.On("Connect").Return(nil, errors.New("dial error")).Once()

		err := svc.SendPasswordResetEmail(resetJobBody(t))
		assert.Error(t, err)
	})
}
