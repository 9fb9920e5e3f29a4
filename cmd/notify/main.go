// Notify subscribers about items selling at or below their price limit
package main

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/smtp"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dense-analysis/skinwarp/internal/api"
	"github.com/dense-analysis/skinwarp/internal/currency"
	"github.com/dense-analysis/skinwarp/internal/env"
	"github.com/dense-analysis/skinwarp/internal/model"
)

// staticToken authenticates the unattended run with the service token
// from the environment instead of a stored session.
type staticToken string

func (token staticToken) Token() string {
	return string(token)
}

// Alert is one subscription whose limit an item currently meets.
type Alert struct {
	Subscription model.Subscription
	Item         model.Item
	Price        currency.Money
}

// findAlertsToTrigger fetches the subscriptions for the service account
// and matches each against the current item list. A subscription
// triggers when an item with its name has a lowest price at or below
// the subscription's limit.
func findAlertsToTrigger(
	ctx context.Context,
	client *api.Client,
	config *env.Config,
) ([]*Alert, error) {
	subscriptionList, err := client.Subscriptions(ctx)

	if err != nil {
		return nil, err
	}

	var alertList []*Alert

	for _, subscription := range subscriptionList {
		maxPremium, err := decimal.NewFromString(subscription.MaxPremium)

		if err != nil {
			// Subscriptions without a usable limit never trigger.
			continue
		}

		page, err := client.Items(ctx, api.ItemsQuery{
			Name:     subscription.Name,
			PageSize: config.ItemPageSize,
		})

		if err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			if item.LowestPrice == nil {
				continue
			}

			if item.LowestPrice.Price.Amount.GreaterThan(maxPremium) {
				continue
			}

			alertList = append(alertList, &Alert{
				Subscription: subscription,
				Item:         item,
				Price:        item.LowestPrice.Price,
			})
		}
	}

	return alertList, nil
}

func sendEmail(config *env.Config, to string, message string) error {
	host := config.SMTPHost
	tlsconfig := &tls.Config{ServerName: host}
	auth := smtp.PlainAuth("", config.SMTPUsername, config.SMTPPassword, host)

	var conn *tls.Conn
	var err error

	if conn, err = tls.Dial("tcp", host+":"+config.SMTPPort, tlsconfig); err != nil {
		return err
	}

	defer conn.Close()

	var client *smtp.Client

	if client, err = smtp.NewClient(conn, host); err != nil {
		return err
	}

	defer client.Close()

	if err = client.Auth(auth); err != nil {
		return err
	}

	if err = client.Mail(config.SMTPFrom); err != nil {
		return err
	}

	if err = client.Rcpt(to); err != nil {
		return err
	}

	var writer io.WriteCloser

	if writer, err = client.Data(); err != nil {
		return err
	}

	if _, err = writer.Write([]byte(message)); err != nil {
		return err
	}

	if err = writer.Close(); err != nil {
		return err
	}

	return client.Quit()
}

func sendTelegramMessage(config *env.Config, chatID string, text string) error {
	body, err := json.Marshal(map[string]string{
		"chat_id": chatID,
		"text":    text,
	})

	if err != nil {
		return err
	}

	response, err := http.Post(
		"https://api.telegram.org/bot"+config.TelegramBotToken+"/sendMessage",
		"application/json",
		bytes.NewReader(body),
	)

	if err != nil {
		return err
	}

	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API status %d", response.StatusCode)
	}

	return nil
}

type notiTarget struct {
	notiType string
	notiID   string
}

func alertLines(alertList []*Alert) []string {
	lines := make([]string, len(alertList))

	for i, alert := range alertList {
		lines[i] = fmt.Sprintf(
			"%s is at %s %s on %s (limit %s)",
			alert.Item.FullName,
			alert.Price.Amount.StringFixed(2),
			alert.Price.Unit,
			alert.Item.LowestPrice.Market,
			alert.Subscription.MaxPremium,
		)
	}

	return lines
}

func sendAlerts(config *env.Config, alertList []*Alert) error {
	groupedAlerts := map[notiTarget][]*Alert{}

	for _, alert := range alertList {
		target := notiTarget{
			notiType: alert.Subscription.NotiType,
			notiID:   alert.Subscription.NotiID,
		}
		groupedAlerts[target] = append(groupedAlerts[target], alert)
	}

	for target, groupedList := range groupedAlerts {
		lines := strings.Join(alertLines(groupedList), "\n")

		switch target.notiType {
		case "telegram":
			if err := sendTelegramMessage(config, target.notiID, "Price alert:\n\n"+lines); err != nil {
				return err
			}
		default:
			message := `To: {to}
From: {from}
Subject: Price Alert
Content-Type: text/plain; charset=UTF-8; format=flowed
Content-Transfer-Encoding: 7bit

Items have dropped to your limit:

{priceString}
`
			message = strings.Replace(message, "{to}", target.notiID, -1)
			message = strings.Replace(message, "{from}", config.SMTPFrom, -1)
			message = strings.Replace(message, "{priceString}", lines, -1)

			if err := sendEmail(config, target.notiID, message); err != nil {
				return err
			}
		}
	}

	return nil
}

func main() {
	env.LoadEnvironmentVariables()

	config, err := env.LoadConfig()

	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %s\n", err)
		os.Exit(1)
	}

	if config.APIToken == "" {
		fmt.Fprintf(os.Stderr, "API_TOKEN is required\n")
		os.Exit(1)
	}

	// Limits are in the list currency, so prices are kept in it rather
	// than converted for display.
	converter := currency.NewConverter(nil, currency.ListPriceCurrency)
	client := api.NewClient(config.APIURL, staticToken(config.APIToken), converter)

	alertList, err := findAlertsToTrigger(context.Background(), client, config)

	if err != nil {
		fmt.Fprintf(os.Stderr, "API error: %s\n", err)
		os.Exit(1)
	}

	if err := sendAlerts(config, alertList); err != nil {
		fmt.Fprintf(os.Stderr, "Notification error: %s\n", err)
		os.Exit(1)
	}

	fmt.Printf("Sent %d alerts\n", len(alertList))
}
