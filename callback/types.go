// 開放平台事件訂閱回調：驗簽、解密、分派到事件處理器
package callback

import (
	"errors"
	"fmt"
)

var (
	ErrConfigNotFound = errors.New("callback configuration not found")
)

// State 是分派流程的狀態
type State int

const (
	StateReceivingRequest State = iota
	StateParsingEnvelope
	StateVerifyingSignature
	StateDecrypting
	StateParsingEvent
	StateRouting
	StateHandled
	StateRejected
)

var stateNames = [...]string{
	"receiving_request",
	"parsing_envelope",
	"verifying_signature",
	"decrypting",
	"parsing_event",
	"routing",
	"handled",
	"rejected",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// 拒絕原因，同時作為回應內容
const (
	ReasonMissingParameters = "missing parameters"
	ReasonConfigMissing     = "configuration missing"
	ReasonSignatureMismatch = "signature mismatch"
	ReasonDecryptFailed     = "decryption failed"
	ReasonMalformedPayload  = "malformed payload"
	ReasonAckFailed         = "acknowledgment failed"
)

// 事件分類
const (
	CategoryUser    = "user"
	CategorySystem  = "system"
	CategoryUnknown = "unknown"
)

const EventCheckURL = "check_url"

// Envelope 是回調請求中的加密信封，簽章資訊在 query，密文在 body
type Envelope struct {
	Signature string
	Timestamp string
	Nonce     string
	Encrypt   string
}

func (e Envelope) complete() bool {
	return e.Signature != "" && e.Timestamp != "" && e.Nonce != "" && e.Encrypt != ""
}

// Inbound 是 HTTP 層交給分派器的原始請求
type Inbound struct {
	Signature string
	Timestamp string
	Nonce     string
	Body      []byte
}

// Result 是分派的終止狀態，HTTP 層直接依此回應
// Handled 時 Body 是要序列化成 JSON 的確認內容，Rejected 時 Body 為 nil
type Result struct {
	State  State
	Status int
	Reason string
	Body   any
}

// Event 是解密後的事件內容
type Event map[string]any

func (e Event) Type() string {
	v, _ := e["EventType"].(string)
	return v
}

func (e Event) CorpID() string {
	v, _ := e["CorpId"].(string)
	return v
}

// UserIDs 讀取 UserId 欄位，平台回傳陣列，少數情況為單一字串
func (e Event) UserIDs() []string {
	switch v := e["UserId"].(type) {
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []any:
		ids := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				ids = append(ids, s)
			}
		}
		return ids
	}
	return nil
}

// routes 是事件類型到分類的固定對照
var routes = map[string]string{
	"user_add_org":    CategoryUser,
	"user_modify_org": CategoryUser,
	"user_leave_org":  CategoryUser,
	EventCheckURL:     CategorySystem,
}

// Classify 回傳事件分類，未知事件回傳 CategoryUnknown
func Classify(eventType string) string {
	if category, ok := routes[eventType]; ok {
		return category
	}
	return CategoryUnknown
}
