package application

import (
	"fmt"

	"github.com/ericfisherdev/examdesk/internal/domain/model"
)

func welcomeMessage(email, token string) model.Message {
	return model.Message{
		Kind:    model.MessageKindWelcome,
		Subject: "Your exam access token",
		Body: fmt.Sprintf("Hello %s,\n\nYour access token is:\n\n    %s\n\n"+
			"Keep it private. Anyone holding it can sign in as you.\n", email, token),
	}
}

func recoveryMessage(link string) model.Message {
	return model.Message{
		Kind:    model.MessageKindRecovery,
		Subject: "Recover your exam access",
		Body: fmt.Sprintf("Someone asked to recover access for this address.\n\n"+
			"[Recover access](%s)\n\nIf this was not you, ignore this message. The link can be used once.\n", link),
	}
}
