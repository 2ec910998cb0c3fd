package qr

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"io"

	"github.com/skip2/go-qrcode"
)

// Renderer turns a ticket payload into a QR PNG. The payload is AES-CFB
// encrypted so a scanned code is opaque without the shared secret.
type Renderer struct {
	secret []byte
}

func NewRenderer(secret string) *Renderer {
	hashed := sha256.Sum256([]byte(secret)) // normalize to 32 bytes
	return &Renderer{secret: hashed[:]}
}

func (r *Renderer) Render(payload string) ([]byte, error) {
	encrypted, err := encryptAES([]byte(payload), r.secret)
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(encrypted, qrcode.Medium, 256)
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
