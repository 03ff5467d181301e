package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mhsenam/rentmio/internal/inbox"
	"github.com/mhsenam/rentmio/internal/models"
)

// chatOrigin tags drafts that arrive from the command line.
const chatOrigin = "cli"

func ChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Open the inbox, optionally at a conversation with a draft",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rawID, _ := cmd.Flags().GetString("conversation")
			draft, _ := cmd.Flags().GetString("message")

			api, store, err := openSession(cmd)
			if err != nil {
				return err
			}
			if err := requireSignedIn(cmd, store); err != nil {
				return err
			}

			var link *inbox.DeepLink
			if rawID != "" {
				id, err := uuid.Parse(rawID)
				if err != nil {
					return fmt.Errorf("invalid --conversation: %w", err)
				}
				link = &inbox.DeepLink{ConversationID: id, Draft: draft, Origin: chatOrigin}
			}

			ctrl := inbox.NewController(api)
			if err := ctrl.Activate(cmd.Context(), link); err != nil {
				return err
			}

			me := store.Snapshot().UserID
			printConversations(ctrl.Conversations(), ctrl.Selected())
			if ctrl.Selected() == uuid.Nil {
				fmt.Println("No conversations yet.")
				return nil
			}
			if link != nil && ctrl.Selected() != link.ConversationID {
				fmt.Printf("Conversation %s not found; showing the latest one.\n", link.ConversationID)
			}
			printMessages(ctrl.Messages(), me)
			return nil
		},
	}
	cmd.Flags().String("conversation", "", "Conversation ID to open")
	cmd.Flags().String("message", "", "Draft to send once the conversation is open")
	return cmd
}

func printConversations(convs []*models.Conversation, selected uuid.UUID) {
	for _, c := range convs {
		marker := " "
		if c.ID == selected {
			marker = "*"
		}
		title := "(no property)"
		if c.PropertyTitle != nil {
			title = *c.PropertyTitle
		}
		last := ""
		if c.LastMessage != nil {
			last = c.LastMessage.Content
		}
		fmt.Printf("%s %s  %s  %s\n", marker, c.ID, title, last)
	}
}

func printMessages(msgs []*models.Message, me string) {
	fmt.Println()
	for _, m := range msgs {
		who := "them"
		if m.SenderID.String() == me {
			who = "me"
		}
		fmt.Printf("[%s] %-4s %s\n", m.Timestamp.Local().Format(time.Kitchen), who, m.Content)
	}
}
