package notifier

import (
	"errors"
	"io"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/wifinet-dashboard/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/lib/smtp"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/services/billing"
)

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Connect() (smtp.Client, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(smtp.Client), args.Error(1)
}

func (m *MockTransport) From() string {
	args := m.Called()
	return args.String(0)
}

type MockSMTPClient struct {
	mock.Mock
}

func (m *MockSMTPClient) Mail(from string) error {
	return m.Called(from).Error(0)
}

func (m *MockSMTPClient) Rcpt(to string) error {
	return m.Called(to).Error(0)
}

func (m *MockSMTPClient) Data() (io.WriteCloser, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.WriteCloser), args.Error(1)
}

func (m *MockSMTPClient) Close() error {
	return m.Called().Error(0)
}

func (m *MockSMTPClient) Quit() error {
	return m.Called().Error(0)
}

type bufferWriter struct {
	strings.Builder
	closed bool
}

func (b *bufferWriter) Close() error {
	b.closed = true
	return nil
}

const reminderBody = `{"user":{"id":"u1","name":"Ana","email":"ana@example.com","address":"","planId":"p1","status":"active","joinDate":"2023-01-15"},"planName":"Basic","amountDue":1999,"dueDate":"2024-06-15","dayDiff":1}`

func TestSenderService_SendReminder(t *testing.T) {
	biller := billing.Biller{CompanyName: "WiFiNet", CurrencySymbol: "₱"}

	tests := []struct {
		name          string
		body          []byte
		setupMocks    func(*MockTransport, *bufferWriter)
		expectedError bool
		errorMessage  string
		permanent     bool
	}{
		{
			name: "success - send reminder email",
			body: []byte(reminderBody),
			setupMocks: func(t *MockTransport, w *bufferWriter) {
				mockClient := new(MockSMTPClient)
				t.On("From").Return("billing@wifinet.test")
				t.On("Connect").Return(mockClient, nil).Once()
				mockClient.On("Mail", "billing@wifinet.test").Return(nil).Once()
				mockClient.On("Rcpt", "ana@example.com").Return(nil).Once()
				mockClient.On("Data").Return(w, nil).Once()
				mockClient.On("Quit").Return(nil).Once()
				mockClient.On("Close").Return(nil).Once()
			},
		},
		{
			name:          "invalid JSON",
			body:          []byte(`invalid json`),
			setupMocks:    func(_ *MockTransport, _ *bufferWriter) {},
			expectedError: true,
			errorMessage:  "error unmarshalling message",
			permanent:     true,
		},
		{
			name:          "truncated JSON",
			body:          []byte(`{not json`),
			setupMocks:    func(_ *MockTransport, _ *bufferWriter) {},
			expectedError: true,
			errorMessage:  "error unmarshalling message",
			permanent:     true,
		},
		{
			name:       "no recipient",
			body:       []byte(`{"user":{"id":"u9","email":""},"dueDate":"2024-06-15"}`),
			setupMocks: func(_ *MockTransport, _ *bufferWriter) {},
		},
		{
			name: "SMTP connection error",
			body: []byte(reminderBody),
			setupMocks: func(t *MockTransport, _ *bufferWriter) {
				t.On("From").Return("billing@wifinet.test")
				t.On("Connect").Return(nil, errors.New("connection error")).Once()
			},
			expectedError: true,
			errorMessage:  "connection error",
		},
		{
			name: "recipient rejected",
			body: []byte(reminderBody),
			setupMocks: func(t *MockTransport, _ *bufferWriter) {
				mockClient := new(MockSMTPClient)
				t.On("From").Return("billing@wifinet.test")
				t.On("Connect").Return(mockClient, nil).Once()
				mockClient.On("Mail", "billing@wifinet.test").Return(nil).Once()
				mockClient.On("Rcpt", "ana@example.com").Return(&textproto.Error{Code: 550, Msg: "no such user"}).Once()
				mockClient.On("Close").Return(nil).Once()
			},
			expectedError: true,
			errorMessage:  "550",
			permanent:     true,
		},
		{
			name: "mailbox busy",
			body: []byte(reminderBody),
			setupMocks: func(t *MockTransport, _ *bufferWriter) {
				mockClient := new(MockSMTPClient)
				t.On("From").Return("billing@wifinet.test")
				t.On("Connect").Return(mockClient, nil).Once()
				mockClient.On("Mail", "billing@wifinet.test").Return(nil).Once()
				mockClient.On("Rcpt", "ana@example.com").Return(&textproto.Error{Code: 450, Msg: "mailbox busy"}).Once()
				mockClient.On("Close").Return(nil).Once()
			},
			expectedError: true,
			errorMessage:  "450",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := new(MockTransport)
			w := &bufferWriter{}
			tt.setupMocks(transport, w)
			service := NewSenderService(transport, biller, newNoopLogger())

			err := service.SendReminder(tt.body)

			if tt.expectedError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMessage)
				assert.Equal(t, tt.permanent, errors.Is(err, rabbitmq.ErrPermanent))
			} else {
				assert.NoError(t, err)
			}
			transport.AssertExpectations(t)
		})
	}
}

func TestSenderService_LetterMatchesMailto(t *testing.T) {
	biller := billing.Biller{CompanyName: "WiFiNet", CurrencySymbol: "₱"}
	transport := new(MockTransport)
	mockClient := new(MockSMTPClient)
	w := &bufferWriter{}
	transport.On("From").Return("billing@wifinet.test")
	transport.On("Connect").Return(mockClient, nil).Once()
	mockClient.On("Mail", mock.Anything).Return(nil)
	mockClient.On("Rcpt", mock.Anything).Return(nil)
	mockClient.On("Data").Return(w, nil)
	mockClient.On("Quit").Return(nil)
	mockClient.On("Close").Return(nil)

	err := NewSenderService(transport, biller, newNoopLogger()).SendReminder([]byte(reminderBody))

	assert.NoError(t, err)
	assert.True(t, w.closed)
	msg := w.String()
	assert.Contains(t, msg, "Subject: Your WiFiNet Bill is Due Soon\r\n")
	assert.Contains(t, msg, "To: ana@example.com\r\n")
	assert.Contains(t, msg, "Hello Ana,")
	assert.Contains(t, msg, "₱1,999 is due on 2024-06-15")
}
