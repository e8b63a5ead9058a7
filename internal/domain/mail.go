package domain

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type CreateUserMailData struct {
	FullName string `json:"fullName"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type ResetPasswordMailData struct {
	FullName   string `json:"fullName"`
	OTP        string `json:"otp"`
	Expiration int    `json:"expiration"`
}

type ConvocationOfferMailData struct {
	FullName         string `json:"fullName"`
	SectorName       string `json:"sectorName"`
	Date             string `json:"date"`
	StartTime        string `json:"startTime"`
	EndTime          string `json:"endTime"`
	TotalHours       string `json:"totalHours"`
	ResponseDeadline string `json:"responseDeadline"`
}

type ConvocationCancelledMailData struct {
	FullName string `json:"fullName"`
	Date     string `json:"date"`
	Reason   string `json:"reason"`
}
