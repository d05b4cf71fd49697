package reconcile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// APIClient implements StatusReader and StatusWriter against the relay's
// REST status endpoints. It lists users and picks out its own record,
// exactly what a dashboard client does to refresh the fleet view.
type APIClient struct {
	baseURL string
	token   string
	userID  int
	http    *http.Client
}

func NewAPIClient(baseURL, token string, userID int) *APIClient {
	return &APIClient{
		baseURL: baseURL,
		token:   token,
		userID:  userID,
		http:    &http.Client{Timeout: 5 * time.Second},
	}
}

var (
	_ StatusReader = (*APIClient)(nil)
	_ StatusWriter = (*APIClient)(nil)
)

func (c *APIClient) TruckStatus(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/users", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("list users: status %d", resp.StatusCode)
	}

	var users []struct {
		ID    int `json:"id"`
		Truck *struct {
			CurrentStatus string `json:"currentStatus"`
		} `json:"truckDetails"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&users); err != nil {
		return "", err
	}

	for _, u := range users {
		if u.ID == c.userID && u.Truck != nil {
			return u.Truck.CurrentStatus, nil
		}
	}
	return "", fmt.Errorf("no truck record for user %d", c.userID)
}

func (c *APIClient) UpdateTruckStatus(ctx context.Context, status string) error {
	body, _ := json.Marshal(map[string]string{"status": status})
	url := fmt.Sprintf("%s/api/users/%d/truck-status", c.baseURL, c.userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("update truck status: status %d", resp.StatusCode)
	}
	return nil
}
