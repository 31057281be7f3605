package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/vocab-review/internal/domain"
	"github.com/phrazzld/vocab-review/internal/service/review"
	"github.com/spf13/cobra"
)

// withService runs fn against a review service bound to the configured database.
func (a *app) withService(cmd *cobra.Command, fn func(ctx context.Context, svc *review.Service) error) error {
	svc, release, err := a.reviewService(cmd.Context())
	if err != nil {
		return err
	}
	defer release()
	return fn(cmd.Context(), svc)
}

func parseID(name, value string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s %q: %w", name, value, err)
	}
	return id, nil
}

// parseOptionalID parses value unless it is empty, in which case it returns nil.
func parseOptionalID(name, value string) (*uuid.UUID, error) {
	if value == "" {
		return nil, nil
	}
	id, err := parseID(name, value)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func addUserFlag(cmd *cobra.Command, user *string) {
	cmd.Flags().StringVarP(user, "user", "u", "", "Owning user id")
	_ = cmd.MarkFlagRequired("user")
}

func newCardCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "card",
		Short: "Manage flashcards",
	}

	var (
		user  string
		book  string
		input review.CardInput
	)
	add := &cobra.Command{
		Use:   "add WORD",
		Short: "Add a flashcard that is due immediately",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseID("user", user)
			if err != nil {
				return err
			}
			if input.BookID, err = parseOptionalID("book", book); err != nil {
				return err
			}
			input.Word = args[0]
			return a.withService(cmd, func(ctx context.Context, svc *review.Service) error {
				card, err := svc.AddCard(ctx, userID, input)
				if err != nil {
					return err
				}
				return printJSON(cmd, card)
			})
		},
	}
	addUserFlag(add, &user)
	add.Flags().StringVarP(&book, "book", "b", "", "File the card under this book id")
	add.Flags().StringVar(&input.Definition, "definition", "", "Definition")
	add.Flags().StringVar(&input.Translation, "translation", "", "Translation")
	add.Flags().StringVar(&input.Pronunciation, "pronunciation", "", "Pronunciation")
	add.Flags().StringVar(&input.Example, "example", "", "Example sentence")
	add.Flags().StringVar(&input.ExampleTranslation, "example-translation", "", "Translation of the example")

	cmd.AddCommand(add)
	return cmd
}

func newBookCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "book",
		Short: "Manage books of flashcards",
	}

	var (
		addUser string
		input   review.BookInput
	)
	add := &cobra.Command{
		Use:   "add TITLE",
		Short: "Create an empty book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseID("user", addUser)
			if err != nil {
				return err
			}
			input.Title = args[0]
			return a.withService(cmd, func(ctx context.Context, svc *review.Service) error {
				book, err := svc.CreateBook(ctx, userID, input)
				if err != nil {
					return err
				}
				return printJSON(cmd, book)
			})
		},
	}
	addUserFlag(add, &addUser)
	add.Flags().StringVar(&input.Description, "description", "", "Description")
	add.Flags().StringVar(&input.Author, "author", "", "Author")
	add.Flags().StringVar(&input.CoverImage, "cover", "", "Cover image URL")
	add.Flags().BoolVar(&input.Private, "private", false, "Only the owner may add cards")

	var listUser string
	list := &cobra.Command{
		Use:   "list",
		Short: "List the user's books and every public book",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := parseID("user", listUser)
			if err != nil {
				return err
			}
			return a.withService(cmd, func(ctx context.Context, svc *review.Service) error {
				books, err := svc.ListBooks(ctx, userID)
				if err != nil {
					return err
				}
				return printJSON(cmd, books)
			})
		},
	}
	addUserFlag(list, &listUser)

	var deleteUser string
	del := &cobra.Command{
		Use:   "delete BOOK_ID",
		Short: "Delete a book and all of its cards",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseID("user", deleteUser)
			if err != nil {
				return err
			}
			bookID, err := parseID("book", args[0])
			if err != nil {
				return err
			}
			return a.withService(cmd, func(ctx context.Context, svc *review.Service) error {
				return svc.DeleteBook(ctx, userID, bookID)
			})
		},
	}
	addUserFlag(del, &deleteUser)

	cmd.AddCommand(add, list, del)
	return cmd
}

func newSessionCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Start and close study sessions",
	}

	var (
		startUser   string
		sessionType string
	)
	start := &cobra.Command{
		Use:   "start",
		Short: "Open a new session and print its id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := parseID("user", startUser)
			if err != nil {
				return err
			}
			return a.withService(cmd, func(ctx context.Context, svc *review.Service) error {
				summary, err := svc.StartSession(ctx, userID, domain.SessionType(sessionType))
				if err != nil {
					return err
				}
				return printJSON(cmd, summary)
			})
		},
	}
	addUserFlag(start, &startUser)
	start.Flags().StringVarP(&sessionType, "type", "t", string(domain.SessionTypeReview),
		"Session type: review, learn or practice")

	var closeUser string
	closeCmd := &cobra.Command{
		Use:   "close SESSION_ID",
		Short: "Close a session and print its final summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseID("user", closeUser)
			if err != nil {
				return err
			}
			sessionID, err := parseID("session", args[0])
			if err != nil {
				return err
			}
			return a.withService(cmd, func(ctx context.Context, svc *review.Service) error {
				summary, err := svc.CloseSession(ctx, userID, sessionID)
				if err != nil {
					return err
				}
				return printJSON(cmd, summary)
			})
		},
	}
	addUserFlag(closeCmd, &closeUser)

	cmd.AddCommand(start, closeCmd)
	return cmd
}

func newReviewCmd(a *app) *cobra.Command {
	var (
		user       string
		sessionArg string
		result     string
		responseMs int
	)

	cmd := &cobra.Command{
		Use:   "review CARD_ID",
		Short: "Submit one answer for a card within a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseID("user", user)
			if err != nil {
				return err
			}
			sessionID, err := parseID("session", sessionArg)
			if err != nil {
				return err
			}
			cardID, err := parseID("card", args[0])
			if err != nil {
				return err
			}

			event := domain.ReviewEvent{
				CardID:     cardID,
				Result:     domain.RawResult(result),
				OccurredAt: time.Now().UTC(),
			}
			if cmd.Flags().Changed("response-ms") {
				event.ResponseTimeMs = &responseMs
			}

			return a.withService(cmd, func(ctx context.Context, svc *review.Service) error {
				res, err := svc.SubmitReview(ctx, userID, sessionID, event)
				if err != nil {
					return err
				}
				return printJSON(cmd, res)
			})
		},
	}
	addUserFlag(cmd, &user)
	cmd.Flags().StringVarP(&sessionArg, "session", "s", "", "Session id")
	_ = cmd.MarkFlagRequired("session")
	cmd.Flags().StringVarP(&result, "result", "r", string(domain.ResultCorrect), "correct, incorrect or skipped")
	cmd.Flags().IntVar(&responseMs, "response-ms", 0, "Response time in milliseconds")

	return cmd
}

func newDueCmd(a *app) *cobra.Command {
	var (
		user  string
		book  string
		limit int
		at    string
	)

	cmd := &cobra.Command{
		Use:   "due",
		Short: "List cards due for review",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := parseID("user", user)
			if err != nil {
				return err
			}
			bookID, err := parseOptionalID("book", book)
			if err != nil {
				return err
			}
			var now time.Time
			if at != "" {
				if now, err = time.Parse(time.RFC3339, at); err != nil {
					return fmt.Errorf("invalid --at %q: %w", at, err)
				}
			}
			return a.withService(cmd, func(ctx context.Context, svc *review.Service) error {
				cards, err := svc.DueCards(ctx, userID, bookID, now, limit)
				if err != nil {
					return err
				}
				return printJSON(cmd, cards)
			})
		},
	}
	addUserFlag(cmd, &user)
	cmd.Flags().StringVarP(&book, "book", "b", "", "Only cards of this book id")
	cmd.Flags().IntVarP(&limit, "limit", "n", review.DefaultDueLimit, "Maximum number of cards")
	cmd.Flags().StringVar(&at, "at", "", "Due at this RFC 3339 time instead of now")

	return cmd
}

func newPostponeCmd(a *app) *cobra.Command {
	var (
		user string
		days int
	)

	cmd := &cobra.Command{
		Use:   "postpone CARD_ID",
		Short: "Push a card's next review back by whole days",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseID("user", user)
			if err != nil {
				return err
			}
			cardID, err := parseID("card", args[0])
			if err != nil {
				return err
			}
			return a.withService(cmd, func(ctx context.Context, svc *review.Service) error {
				card, err := svc.Postpone(ctx, userID, cardID, days)
				if err != nil {
					return err
				}
				return printJSON(cmd, card)
			})
		},
	}
	addUserFlag(cmd, &user)
	cmd.Flags().IntVarP(&days, "days", "d", 1, "Days to postpone by")

	return cmd
}

func newStatsCmd(a *app) *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Count the user's cards per status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := parseID("user", user)
			if err != nil {
				return err
			}
			return a.withService(cmd, func(ctx context.Context, svc *review.Service) error {
				counts, err := svc.StatusCounts(ctx, userID)
				if err != nil {
					return err
				}
				return printJSON(cmd, counts)
			})
		},
	}
	addUserFlag(cmd, &user)

	return cmd
}
