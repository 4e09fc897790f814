package qr

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"

	"github.com/skip2/go-qrcode"

	"ticketly/internal/models"
)

// Generator renders a sold ticket into a QR PNG whose payload is AES-encrypted
// with a deployment secret, so gate scanners can verify provenance offline.
type Generator struct {
	secret []byte
}

func NewGenerator(secret string) *Generator {
	hashed := sha256.Sum256([]byte(secret)) // normalize to 32 bytes
	return &Generator{secret: hashed[:]}
}

// PassPayload is what ends up inside the QR code.
type PassPayload struct {
	TicketID   string            `json:"ticket_id"`
	CalendarID string            `json:"calendar_id"`
	Type       models.TicketType `json:"type"`
	OrderID    string            `json:"order_id"`
}

func (g *Generator) GeneratePass(ticket models.Ticket) ([]byte, error) {
	payload := PassPayload{
		TicketID:   ticket.ID,
		CalendarID: ticket.CalendarID,
		Type:       ticket.Type,
		OrderID:    ticket.OrderID,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	encrypted, err := encryptAES(data, g.secret)
	if err != nil {
		return nil, err
	}

	return qrcode.Encode(encrypted, qrcode.Medium, 256)
}

// Decrypt reverses the pass encryption. Used by scanners and tests.
func (g *Generator) Decrypt(encoded string) (*PassPayload, error) {
	ciphertext, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(g.secret)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < aes.BlockSize {
		return nil, errors.New("ciphertext too short")
	}
	iv := ciphertext[:aes.BlockSize]
	data := ciphertext[aes.BlockSize:]

	stream := cipher.NewCFBDecrypter(block, iv)
	stream.XORKeyStream(data, data)

	var payload PassPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// EncryptPayload exposes the raw encrypted string for tests and non-PNG consumers.
func (g *Generator) EncryptPayload(payload PassPayload) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return encryptAES(data, g.secret)
}

func encryptAES(data []byte, key []byte) (string, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	ciphertext := make([]byte, aes.BlockSize+len(data))
	iv := ciphertext[:aes.BlockSize]

	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", err
	}

	stream := cipher.NewCFBEncrypter(block, iv)
	stream.XORKeyStream(ciphertext[aes.BlockSize:], data)

	return base64.URLEncoding.EncodeToString(ciphertext), nil
}
