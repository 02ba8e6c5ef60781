package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const baseURL = "http://0.0.0.0:9234"

// Smoke client exercising the happy path: register, login, create a category and a
// task, list, read statistics, delete.
func main() {
	initTracer()

	client := &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}

	email := fmt.Sprintf("smoke+%d@example.com", time.Now().UnixNano())

	_ = call(client, "", http.MethodPost, "/users", map[string]interface{}{
		"email":            email,
		"first_name":       "Smoke",
		"last_name":        "Test",
		"password":         "correct horse battery staple",
		"password_confirm": "correct horse battery staple",
	})

	login := call(client, "", http.MethodPost, "/users/login", map[string]interface{}{
		"email":    email,
		"password": "correct horse battery staple",
	})

	token, _ := login["token"].(string)
	if token == "" {
		log.Fatal("Couldn't log in")
	}

	category := call(client, token, http.MethodPost, "/categories", map[string]interface{}{
		"name":  "Chores",
		"color": "#00AA00",
	})

	fmt.Printf("New Category\n\tID: %v\n\tName: %v\n", category["id"], category["name"])

	task := call(client, token, http.MethodPost, "/tasks", map[string]interface{}{
		"title":    "Sleep early",
		"priority": "HIGH",
		"due_date": time.Now().Add(24 * time.Hour).Format("2006-01-02"),
		"category": category["id"],
	})

	fmt.Printf("New Task\n\tID: %v\n", task["id"])
	fmt.Printf("\tPriority: %v\n", task["priority"])
	fmt.Printf("\tDue: %v\n", task["due_date"])

	list := call(client, token, http.MethodGet, "/tasks?priority=HIGH&ordering=due_date", nil)
	fmt.Printf("High priority tasks: %v\n", list["count"])

	stats := call(client, token, http.MethodGet, "/tasks/statistics", nil)
	fmt.Printf("Statistics\n\tTotal: %v\n\tHigh priority: %v\n", stats["total_tasks"], stats["high_priority_count"])

	_ = call(client, token, http.MethodDelete, fmt.Sprintf("/tasks/%v", task["id"]), nil)

	time.Sleep(10 * time.Second)
}

func call(client *http.Client, token, method, path string, body map[string]interface{}) map[string]interface{} {
	var buf bytes.Buffer

	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			log.Fatalf("Couldn't encode body: %s", err)
		}
	}

	req, err := http.NewRequestWithContext(context.Background(), method, baseURL+path, &buf)
	if err != nil {
		log.Fatalf("Couldn't create request: %s", err)
	}

	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		log.Fatalf("Couldn't call %s %s: %s", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		log.Fatalf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}

	res := map[string]interface{}{}

	_ = json.NewDecoder(resp.Body).Decode(&res)

	return res
}

// initTracer initializes OpenTelemetry tracing with Jaeger and stdout exporters.
func initTracer() {
	jaegerEndpoint := "http://localhost:14268/api/traces"

	jaegerExporter, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(jaegerEndpoint)))
	if err != nil {
		log.Fatalf("Couldn't initialize jaeger exporter: %s", err)
	}

	stdoutExporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		log.Fatalf("Couldn't initialize stdout exporter: %s", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(stdoutExporter),
		sdktrace.WithBatcher(jaegerExporter),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
}
