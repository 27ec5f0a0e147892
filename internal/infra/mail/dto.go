package mail

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	NotifyTo string
}

type leadNotificationData struct {
	CustomerName string
	Platform     string
	Email        string
	Phone        string
	CampaignName string
	FormName     string
	ReceivedAt   string
}
