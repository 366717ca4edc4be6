package emails

const fallbackColor = "#6b7280"

var statusLabels = map[string]string{
	"new":         "New Submission",
	"contacted":   "Contacted",
	"in-progress": "In Progress",
	"completed":   "Completed",
	"rejected":    "Not Successful",
}

var statusColors = map[string]string{
	"new":         "#3b82f6",
	"contacted":   "#8b5cf6",
	"in-progress": "#f59e0b",
	"completed":   "#10b981",
	"rejected":    "#ef4444",
}

var statusMessages = map[string]string{
	"new":         "Your submission has been received and is awaiting review.",
	"contacted":   "Our team has reached out to you. Please check your email and phone for our communication.",
	"in-progress": "Your submission is currently being processed. We will update you on the progress soon.",
	"completed":   "Congratulations! Your submission has been successfully processed.",
	"rejected":    "Thank you for your interest. Unfortunately, we are unable to proceed with your submission at this time.",
}

var typeLabels = map[string]string{
	"application":     "Program Application",
	"reservation":     "Program Reservation",
	"enquiry":         "General Enquiry",
	"interest":        "Expression of Interest",
	"payment-inquiry": "Payment Inquiry",
}

var typeColors = map[string]string{
	"application":     "#3b82f6",
	"reservation":     "#8b5cf6",
	"enquiry":         "#10b981",
	"interest":        "#f59e0b",
	"payment-inquiry": "#ef4444",
}

// StatusLabel returns the display label, or status itself when unknown.
func StatusLabel(status string) string {
	if label, ok := statusLabels[status]; ok {
		return label
	}
	return status
}

// StatusColor returns the badge color, gray when unknown.
func StatusColor(status string) string {
	if color, ok := statusColors[status]; ok {
		return color
	}
	return fallbackColor
}

// StatusMessage explains status to the submitter.
func StatusMessage(status string) string {
	if msg, ok := statusMessages[status]; ok {
		return msg
	}
	return "Your submission status has been updated."
}

// TypeLabel returns the display label, or t itself when unknown.
func TypeLabel(t string) string {
	if label, ok := typeLabels[t]; ok {
		return label
	}
	return t
}

// TypeColor returns the digest badge color, gray when unknown.
func TypeColor(t string) string {
	if color, ok := typeColors[t]; ok {
		return color
	}
	return fallbackColor
}

// CallToAction is the status-specific next-steps panel.
type CallToAction struct {
	Title    string
	Subtitle string
	Body     string
}

var callsToAction = map[string]CallToAction{
	"in-progress": {
		Title:    "Next Steps",
		Subtitle: "We are actively processing your submission",
		Body:     "Please ensure all required documents are ready. We may contact you for additional information.",
	},
	"completed": {
		Title:    "Congratulations!",
		Subtitle: "Your submission has been successfully completed",
		Body:     "Our team will reach out to you with the next steps shortly.",
	},
	"contacted": {
		Title:    "We've Reached Out",
		Subtitle: "Please check your inbox and phone",
		Body:     "If you haven't received our communication, please check your spam folder or contact us directly.",
	},
}

// CallToActionFor returns the panel for status. Only in-progress, completed
// and contacted have one.
func CallToActionFor(status string) (CallToAction, bool) {
	cta, ok := callsToAction[status]
	return cta, ok
}
