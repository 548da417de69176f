// Smoke test for the WhatsApp gateway: prints the session status and, when
// TEST_PHONE is set, checks registration and sends one text.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/xavierca1/leadreach/internal/infra/integration/whatsapp"
	"github.com/xavierca1/leadreach/internal/usecase"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using the process environment")
	}

	url := os.Getenv("WHATSAPP_GATEWAY_URL")
	if url == "" {
		url = "http://localhost:8080"
	}
	client := whatsapp.NewClient(url, os.Getenv("WHATSAPP_GATEWAY_TOKEN"))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	st, err := client.Status(ctx)
	if err != nil {
		log.Fatalf("gateway status: %v", err)
	}
	fmt.Printf("Gateway: %s\n", url)
	fmt.Printf("   Connected: %t\n", st.Connected)
	fmt.Printf("   Logged in: %t\n", st.LoggedIn)
	fmt.Printf("   JID:       %s\n", st.JID)

	phone := os.Getenv("TEST_PHONE")
	if phone == "" {
		fmt.Println("TEST_PHONE not set, skipping send")
		return
	}
	address, err := usecase.TransportAddress(phone)
	if err != nil {
		log.Fatal(err)
	}

	registered, err := client.IsRegistered(ctx, address)
	if err != nil {
		log.Fatalf("registration check: %v", err)
	}
	fmt.Printf("%s registered on WhatsApp: %t\n", address, registered)

	if err := client.SendText(ctx, address, "Gateway smoke test "+time.Now().Format(time.RFC3339)); err != nil {
		log.Fatalf("send: %v", err)
	}
	fmt.Println("Message sent.")
}
