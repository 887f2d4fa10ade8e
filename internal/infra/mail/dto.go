package mail

type FollowUpEmailData struct {
	Name       string
	Paragraphs []string
	Signature  string
}
