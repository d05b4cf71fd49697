// driversim is a headless driver client: it registers and logs in over
// REST, connects to the relay, streams GPS samples, reacts to mission
// assignments, and runs the reconciliation agent against the durable
// status endpoints. Useful for demos and for soaking a multi-process
// relay deployment.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"go-fleet/internal/reconcile"
)

var (
	serverURL = flag.String("server", "http://localhost:8080", "relay base URL")
	email     = flag.String("email", "", "driver email (default: generated)")
	password  = flag.String("password", "convoy-pass-1", "driver password")
	gpsEvery  = flag.Duration("gps-interval", 2*time.Second, "GPS sample interval")
)

type authResponse struct {
	Token string `json:"access_token"`
	ID    int    `json:"id"`
	Name  string `json:"name"`
}

type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func main() {
	flag.Parse()

	addr := *email
	if addr == "" {
		addr = fmt.Sprintf("driver-%s@sim.local", uuid.NewString()[:8])
	}

	auth := authenticate(addr, *password)
	driverID := strconv.Itoa(auth.ID)
	log.Printf("✅ Logged in as %s (driver %s)", auth.Name, driverID)

	cache := reconcile.NewCache(driverID)
	api := reconcile.NewAPIClient(*serverURL, auth.Token, auth.ID)
	agent := reconcile.NewAgent(driverID, api, api, cache)

	ctx := context.Background()

	// First reconciliation runs before anything else so a driver that was
	// mid-mission when it died comes back BUSY, not READY.
	agent.Reconcile(ctx)
	if cache.Status() == reconcile.TruckIdle {
		if _, err := agent.ToggleAvailability(ctx); err != nil {
			log.Fatalf("❌ Could not go READY: %v", err)
		}
	}
	go agent.Run(ctx)

	wsURL := strings.Replace(*serverURL, "http", "ws", 1) + "/ws?token=" + auth.Token
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		log.Fatalf("❌ WS connect failed: %v", err)
	}
	defer conn.Close()

	var writeMu sync.Mutex
	emit := func(event string, data interface{}) {
		payload, _ := json.Marshal(data)
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := conn.WriteJSON(envelope{Event: event, Data: payload}); err != nil {
			log.Printf("❌ Send failed [%s]: %v", event, err)
		}
	}

	emit("register-driver", driverID)

	go streamGPS(cache, emit)
	go workMissions(ctx, agent, cache, driverID, emit)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			log.Fatalf("❌ WS read failed: %v", err)
		}
		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			continue
		}
		switch env.Event {
		case "mission-assigned":
			var m reconcile.Mission
			if err := json.Unmarshal(env.Data, &m); err != nil {
				continue
			}
			// Broadcast-and-filter: every driver sees every assignment
			// and keeps only its own.
			if m.DriverID != driverID {
				continue
			}
			if _, seen := cache.Get(m.ID); seen {
				continue
			}
			log.Printf("📦 Mission received: %s (%s, urgency %s)", m.ID, m.CargoType, m.Urgency)
			cache.Upsert(m)
		case "mission-ack", "location-update", "driver-action", "receive-message":
			// Not interesting to a driver client.
		}
	}
}

// streamGPS sends a wandering coordinate while the driver is not IDLE,
// mirroring a phone streaming geolocation only when on duty.
func streamGPS(cache *reconcile.Cache, emit func(string, interface{})) {
	lat, lng := 9.0108, 38.7613
	ticker := time.NewTicker(*gpsEvery)
	defer ticker.Stop()
	for range ticker.C {
		if cache.Status() == reconcile.TruckIdle {
			continue
		}
		lat += (rand.Float64() - 0.5) * 0.002
		lng += (rand.Float64() - 0.5) * 0.002
		emit("update-location", map[string]interface{}{
			"driverId":  cache.DriverID(),
			"lat":       lat,
			"lng":       lng,
			"timestamp": time.Now().UnixMilli(),
		})
	}
}

// workMissions accepts pending missions, reports a milestone midway, and
// completes them. Accept and complete go through the agent so the
// durable record is updated before local state.
func workMissions(ctx context.Context, agent *reconcile.Agent, cache *reconcile.Cache, driverID string, emit func(string, interface{})) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for range ticker.C {
		if active, ok := cache.Active(); ok {
			time.Sleep(3 * time.Second)
			emit("driver-action", map[string]string{
				"type":      "MILESTONE",
				"driverId":  driverID,
				"requestId": active.ID,
			})

			time.Sleep(5 * time.Second)
			if err := agent.CompleteMission(ctx, active.ID); err != nil {
				log.Printf("❌ Complete failed: %v", err)
				continue
			}
			emit("driver-action", map[string]string{
				"type":      "COMPLETED",
				"driverId":  driverID,
				"requestId": active.ID,
			})
			log.Printf("🏁 Mission %s completed", active.ID)
			continue
		}

		for _, m := range cache.Pending() {
			if err := agent.AcceptMission(ctx, m.ID); err != nil {
				log.Printf("❌ Accept failed: %v", err)
				continue
			}
			log.Printf("🚚 Mission %s accepted", m.ID)
			break
		}
	}
}

// authenticate registers (ignoring an already-exists error) and logs in.
func authenticate(email, password string) authResponse {
	registerBody := map[string]interface{}{
		"name":     "Sim Driver",
		"email":    email,
		"password": password,
		"role":     "DRIVER",
		"truckDetails": map[string]string{
			"driverLicense": "SIM-" + uuid.NewString()[:8],
			"licensePlate":  "SIM-" + strconv.Itoa(rand.Intn(99999)),
			"model":         "Volvo FH16",
		},
	}
	postJSON("/register", registerBody)

	resp, err := postJSON("/login", map[string]string{"email": email, "password": password})
	if err != nil {
		log.Fatalf("❌ Login failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Fatalf("❌ Login failed: status %d", resp.StatusCode)
	}

	var auth authResponse
	if err := json.NewDecoder(resp.Body).Decode(&auth); err != nil {
		log.Fatalf("❌ Login decode failed: %v", err)
	}
	return auth
}

func postJSON(endpoint string, data interface{}) (*http.Response, error) {
	jsonData, _ := json.Marshal(data)
	return http.Post(*serverURL+endpoint, "application/json", bytes.NewBuffer(jsonData))
}
