// 釘釘事件訂閱回調的加解密與簽名
// 參考 https://open.dingtalk.com/document/orgapp/callback-event-encryption-and-decryption
package dingcrypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	// blockSize 是補位使用的區塊大小，與 AES 的區塊大小不同
	blockSize   = 32
	randomSize  = 16
	lengthSize  = 4
	aesKeySize  = 32
	nonceLength = 16
	nonceChars  = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

var (
	ErrDecrypt    = errors.New("decryption failed")
	ErrInvalidKey = errors.New("invalid aes key")
)

// EncryptedMessage 是回覆給開放平台的加密結構
type EncryptedMessage struct {
	Signature string `json:"msg_signature"`
	Encrypt   string `json:"encrypt"`
	TimeStamp string `json:"timeStamp"`
	Nonce     string `json:"nonce"`
}

// Signature 將四個字串依字典序排序後串接，計算 sha1 十六進位摘要
func Signature(token, timestamp, nonce, encrypt string) string {
	parts := []string{token, timestamp, nonce, encrypt}
	sort.Strings(parts)
	sum := sha1.Sum([]byte(strings.Join(parts, "")))
	return hex.EncodeToString(sum[:])
}

// Verify 驗證簽名，未設定 token 時一律回傳 false
func Verify(token, timestamp, nonce, encrypt, signature string) bool {
	if token == "" {
		return false
	}
	expected := Signature(token, timestamp, nonce, encrypt)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1
}

// deriveKey 由 43 字元的 aes_key 補上 "=" 後 base64 解碼取得 32 bytes 金鑰
func deriveKey(aesKey string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(aesKey + "=")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	if len(key) != aesKeySize {
		return nil, fmt.Errorf("%w: expect %d bytes, got %d", ErrInvalidKey, aesKeySize, len(key))
	}
	return key, nil
}

// Decrypt 解密回調內容並取出 JSON 明文
//
// 解密後的結構:
//
//	random(16) | length(4, big-endian) | payload(length) | receiver key
func Decrypt(aesKey, ciphertext string) ([]byte, error) {
	key, err := deriveKey(aesKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecrypt, err)
	}
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64: %v", ErrDecrypt, err)
	}
	if len(raw) == 0 || len(raw)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: ciphertext length %d is not a multiple of block size", ErrDecrypt, len(raw))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	plain := make([]byte, len(raw))
	cipher.NewCBCDecrypter(block, key[:aes.BlockSize]).CryptBlocks(plain, raw)

	plain, err = pkcs7Unpad(plain)
	if err != nil {
		return nil, err
	}
	if len(plain) < randomSize+lengthSize {
		return nil, fmt.Errorf("%w: plaintext too short", ErrDecrypt)
	}
	body := plain[randomSize:]
	size := binary.BigEndian.Uint32(body[:lengthSize])
	body = body[lengthSize:]
	if uint64(size) > uint64(len(body)) {
		return nil, fmt.Errorf("%w: length prefix %d exceeds remaining %d bytes", ErrDecrypt, size, len(body))
	}
	payload := body[:size]
	if !utf8.Valid(payload) {
		return nil, fmt.Errorf("%w: payload is not valid utf-8", ErrDecrypt)
	}
	return payload, nil
}

// Encrypt 產生可以直接回傳給開放平台的加密訊息，為 Decrypt 的反向操作
func Encrypt(aesKey, receiverKey, timestamp, token string, plaintext []byte) (*EncryptedMessage, error) {
	key, err := deriveKey(aesKey)
	if err != nil {
		return nil, err
	}
	random, err := RandomString(randomSize)
	if err != nil {
		return nil, err
	}
	nonce, err := RandomString(nonceLength)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(random)
	_ = binary.Write(&buf, binary.BigEndian, uint32(len(plaintext)))
	buf.Write(plaintext)
	buf.WriteString(receiverKey)
	padded := pkcs7Pad(buf.Bytes())

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, key[:aes.BlockSize]).CryptBlocks(out, padded)
	encrypted := base64.StdEncoding.EncodeToString(out)

	return &EncryptedMessage{
		Signature: Signature(nonce, timestamp, token, encrypted),
		Encrypt:   encrypted,
		TimeStamp: timestamp,
		Nonce:     nonce,
	}, nil
}

// RandomString 產生指定長度的英數隨機字串
func RandomString(n int) (string, error) {
	const op = "RandomString"
	max := big.NewInt(int64(len(nonceChars)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("[%s] Fail to read random, err=%w", op, err)
		}
		b[i] = nonceChars[idx.Int64()]
	}
	return string(b), nil
}

func pkcs7Pad(data []byte) []byte {
	pad := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(pad)}, pad)...)
}

func pkcs7Unpad(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty plaintext", ErrDecrypt)
	}
	pad := int(data[len(data)-1])
	if pad == 0 || pad > blockSize || pad > len(data) {
		return nil, fmt.Errorf("%w: invalid padding %d", ErrDecrypt, pad)
	}
	for _, b := range data[len(data)-pad:] {
		if int(b) != pad {
			return nil, fmt.Errorf("%w: inconsistent padding", ErrDecrypt)
		}
	}
	return data[:len(data)-pad], nil
}

// Codec 綁定一組回調設定，方便分派器重複使用
type Codec struct {
	Token       string
	AESKey      string
	ReceiverKey string
}

// Enabled 只有同時設定 token 與 aes_key 時才能產生加密回覆
func (c Codec) Enabled() bool {
	return c.Token != "" && c.AESKey != ""
}

func (c Codec) Verify(timestamp, nonce, encrypt, signature string) bool {
	return Verify(c.Token, timestamp, nonce, encrypt, signature)
}

func (c Codec) Decrypt(encrypt string) ([]byte, error) {
	return Decrypt(c.AESKey, encrypt)
}

func (c Codec) Encrypt(timestamp string, plaintext []byte) (*EncryptedMessage, error) {
	return Encrypt(c.AESKey, c.ReceiverKey, timestamp, c.Token, plaintext)
}
