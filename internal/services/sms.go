package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// SMSClient talks to the SMS relay gateway. The gateway answers 200 with
// result_code "1" on success; anything else is a dispatch failure the
// caller must handle.
type SMSClient struct {
	baseURL string
	sender  string
	client  *http.Client
}

type smsRequest struct {
	Sender   string   `json:"sender"`
	Receiver []string `json:"receiver"`
	Msg      string   `json:"msg"`
	Title    string   `json:"title,omitempty"`
}

type smsResponse struct {
	ResultCode string `json:"result_code"`
	Message    string `json:"message"`
	SuccessCnt int    `json:"success_cnt,omitempty"`
	ErrorCnt   int    `json:"error_cnt,omitempty"`
	MsgID      string `json:"msg_id,omitempty"`
}

func NewSMSClient(baseURL, sender string) *SMSClient {
	return &SMSClient{
		baseURL: baseURL,
		sender:  sender,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *SMSClient) Send(ctx context.Context, title, message string, recipients []string) error {
	if s.baseURL == "" {
		return fmt.Errorf("SMS API URL not set")
	}

	payload, err := json.Marshal(smsRequest{
		Sender:   s.sender,
		Receiver: recipients,
		Msg:      message,
		Title:    title,
	})
	if err != nil {
		return fmt.Errorf("failed to encode SMS request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/message/sms", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("SMS API HTTP %d", resp.StatusCode)
	}

	var result smsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode SMS response: %w", err)
	}
	if result.ResultCode != "1" {
		if result.Message != "" {
			return fmt.Errorf("SMS failed: %s", result.Message)
		}
		return fmt.Errorf("SMS failed: result_code %s", result.ResultCode)
	}
	return nil
}
