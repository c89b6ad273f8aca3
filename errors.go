/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

var (
	errRoomNotFound     = errors.New("room not found")
	errNameTaken        = errors.New("username already taken in room")
	errNotHost          = errors.New("requester is not the host")
	errNotEnoughPlayers = errors.New("not enough players")
)

// errorMessage maps an error to the text shown to the requester. Every
// failure is scoped to one request; nothing here is fatal.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, errRoomNotFound):
		return "That room does not exist."
	case errors.Is(err, errNameTaken):
		return "That username is already taken in this room."
	case errors.Is(err, errNotHost):
		return "Only the host can do that."
	case errors.Is(err, errNotEnoughPlayers):
		return "At least two players are needed."
	}
	return "Something went wrong. Please try again."
}

func logf(cfg *Config, format string, args ...any) {
	if !cfg.verbose {
		return
	}

	log.Printf("%s | "+format, append([]any{time.Now().Format(logDate)}, args...)...)
}

func newPage(title, body string) string {
	var htmlBody strings.Builder

	htmlBody.WriteString(`<!DOCTYPE html><html lang="en"><head>`)
	htmlBody.WriteString(`<style>`)
	htmlBody.WriteString(`html,body,a{display:block;height:100%;width:100%;text-decoration:none;color:inherit;cursor:auto;}</style>`)
	htmlBody.WriteString(fmt.Sprintf("<title>%s</title></head>", title))
	htmlBody.WriteString(fmt.Sprintf("<body><a href=\"/\">%s</a></body></html>", body))

	return htmlBody.String()
}
