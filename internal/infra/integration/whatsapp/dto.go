package whatsapp

// envelope is the gateway's response wrapper: {code, success, data} or {code, success, error}.
type envelope[T any] struct {
	Code    int    `json:"code"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
}

type connectRequest struct {
	Subscribe []string `json:"Subscribe"`
	Immediate bool     `json:"Immediate"`
}

// SessionStatus is the gateway's view of the linked device.
type SessionStatus struct {
	Connected bool   `json:"Connected"`
	LoggedIn  bool   `json:"LoggedIn"`
	JID       string `json:"JID"`
	PushName  string `json:"PushName"`
	Platform  string `json:"Platform"`
}

type qrResponse struct {
	QRCode string `json:"QRCode"`
}

type sendTextRequest struct {
	Phone string `json:"Phone"`
	Body  string `json:"Body"`
}

type sendTextResponse struct {
	Details   string `json:"Details"`
	ID        string `json:"Id"`
	Timestamp int64  `json:"Timestamp"`
}

type checkRequest struct {
	Phone []string `json:"Phone"`
}

type checkResponse struct {
	Users []struct {
		Query        string `json:"Query"`
		IsInWhatsapp bool   `json:"IsInWhatsapp"`
		JID          string `json:"JID"`
		VerifiedName string `json:"VerifiedName"`
	} `json:"Users"`
}

// AccountInfo describes the linked WhatsApp account.
type AccountInfo struct {
	Wid      string `json:"wid"`
	PushName string `json:"pushname"`
	Platform string `json:"platform"`
}
