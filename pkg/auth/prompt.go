package auth

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/term"
)

// PromptAccount interactively collects a Bilibili credential set for
// the given label. Cookie values are read without echo when stdin is a
// terminal.
//
// To find the values: log into bilibili.com, open the browser dev
// tools, and copy the SESSDATA and bili_jct cookies.
func PromptAccount(label string) (*Account, error) {
	reader := bufio.NewReader(os.Stdin)

	fmt.Printf("Storing credentials under label %q.\n", label)
	fmt.Println("Copy SESSDATA and bili_jct from your browser's bilibili.com cookies.")
	fmt.Println()

	fmt.Print("SESSDATA cookie value: ")
	sessdata, err := readSecret(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read sessdata: %w", err)
	}
	if sessdata == "" {
		return nil, fmt.Errorf("sessdata is required")
	}

	fmt.Print("bili_jct cookie value: ")
	biliJct, err := readSecret(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read bili_jct: %w", err)
	}
	if biliJct == "" {
		return nil, fmt.Errorf("bili_jct is required")
	}

	fmt.Print("Account uid: ")
	uidInput, err := reader.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read uid: %w", err)
	}
	uid, err := strconv.ParseInt(strings.TrimSpace(uidInput), 10, 64)
	if err != nil || uid <= 0 {
		return nil, fmt.Errorf("uid must be a positive integer")
	}

	fmt.Print("buvid3 cookie value (optional, press Enter to skip): ")
	buvid3, _ := reader.ReadString('\n')

	return &Account{
		Label:    label,
		Sessdata: sessdata,
		BiliJct:  biliJct,
		UID:      uid,
		Buvid3:   strings.TrimSpace(buvid3),
	}, nil
}

// readSecret reads a value from stdin without echoing when possible
func readSecret(reader *bufio.Reader) (string, error) {
	if term.IsTerminal(int(syscall.Stdin)) {
		secret, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err == nil {
			return strings.TrimSpace(string(secret)), nil
		}
	}

	// Fallback to regular input
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}
