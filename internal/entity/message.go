package entity

import "time"

type Channel string

const (
	ChannelEmail     Channel = "email"
	ChannelSMS       Channel = "sms"
	ChannelWhatsApp  Channel = "whatsapp"
	ChannelFacebook  Channel = "facebook"
	ChannelInstagram Channel = "instagram"
)

var Channels = []Channel{ChannelEmail, ChannelSMS, ChannelWhatsApp, ChannelFacebook, ChannelInstagram}

func (c Channel) Valid() bool {
	for _, known := range Channels {
		if c == known {
			return true
		}
	}
	return false
}

type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

type DeliveryStatus string

const (
	DeliverySent      DeliveryStatus = "sent"
	DeliveryDelivered DeliveryStatus = "delivered"
	DeliveryRead      DeliveryStatus = "read"
	DeliveryFailed    DeliveryStatus = "failed"
)

// Message is immutable once received. LeadID is empty when the backend record
// carried no lead reference at all.
type Message struct {
	ID          string         `json:"id"`
	LeadID      string         `json:"leadId"`
	Channel     Channel        `json:"channel"`
	Direction   Direction      `json:"direction"`
	Content     string         `json:"content"`
	Timestamp   time.Time      `json:"timestamp"`
	Status      DeliveryStatus `json:"status"`
	AIGenerated bool           `json:"aiGenerated,omitempty"`

	LeadName  string `json:"leadName,omitempty"`
	LeadEmail string `json:"leadEmail,omitempty"`
}

// Unread is true for inbound messages the business has not read yet.
func (m Message) Unread() bool {
	return m.Direction == DirectionInbound && m.Status != DeliveryRead
}
