// Command unsubscribe-link prints a one-click unsubscribe URL for a user.
// Support staff use it when a user cannot reach the link from an email.
//
//	unsubscribe-link <user-id> [notifications|marketing]
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"vininfo.backend/internal/config"
	"vininfo.backend/internal/infrastructure/email"
	"vininfo.backend/pkg/jwt"
	"vininfo.backend/pkg/utils"
)

var (
	printfFn   = fmt.Printf
	fatalfFn   = log.Fatalf
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
)

func resolveArgs(args []string) (string, jwt.Preference, error) {
	if len(args) == 0 {
		return "", "", fmt.Errorf("usage: unsubscribe-link <user-id> [notifications|marketing]")
	}
	userID, ok := utils.ParseUUID(args[0])
	if !ok {
		return "", "", fmt.Errorf("invalid user id %q", args[0])
	}
	pref := jwt.PreferenceMarketing
	if len(args) > 1 {
		pref = jwt.Preference(args[1])
	}
	if !pref.Valid() {
		return "", "", jwt.ErrInvalidPreference
	}
	return userID.String(), pref, nil
}

func buildLink(cfg *config.Config, userID string, pref jwt.Preference) (string, error) {
	tokens, err := jwt.NewTokenService(cfg.JWT.Secret, cfg.JWT.SessionExpiry, cfg.JWT.UnsubscribeExpiry)
	if err != nil {
		return "", err
	}
	renderer, err := email.NewRenderer(cfg.Server.BaseURL)
	if err != nil {
		return "", err
	}
	token, err := tokens.IssueUnsubscribeToken(userID, pref)
	if err != nil {
		return "", err
	}
	return renderer.UnsubscribeURL(token), nil
}

func main() {
	_ = loadDotenv()

	userID, pref, err := resolveArgs(os.Args[1:])
	if err != nil {
		fatalfFn("%v", err)
		return
	}

	link, err := buildLink(loadCfg(), userID, pref)
	if err != nil {
		fatalfFn("Failed to build unsubscribe link: %v", err)
		return
	}
	printfFn("%s\n", link)
}
