package utils

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/gomail.v2"
)

func SendEmail(to, subject, body string) error {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: Error loading .env file. Using environment variables directly.")
	}
	port, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))

	m := gomail.NewMessage()
	m.SetHeader("From", os.Getenv("EMAIL_USER"))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(
		os.Getenv("SMTP_HOST"),
		port,
		os.Getenv("EMAIL_USER"),
		os.Getenv("EMAIL_PASS"),
	)

	return d.DialAndSend(m)
}

// SendPaymentLinkEmail mails the guest their checkout link after an order is
// created. Link failures are the caller's concern; mail failures are not.
func SendPaymentLinkEmail(to, roomNumber, total, link string) error {
	subject := "Your order payment link"
	body := fmt.Sprintf(`
		<p>Hello,</p>
		<p>Your order for room/table %s has been placed.</p>
		<p><strong>Total:</strong> %s</p>
		<p><a href="%s">Pay for your order</a></p>
		<p>Thank you!</p>
	`, roomNumber, total, link)

	return SendEmail(to, subject, body)
}
