package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/mcoot/clubhouse/internal/api/response"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter. A nil writer means stdout.
func NewOutput(format string, w io.Writer) *Output {
	if w == nil {
		w = os.Stdout
	}
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == OutputJSON {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == OutputJSON {
		o.printJSON(response.Message{Message: msg})
	} else {
		_, _ = fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.LoginResponse:
		o.printUser(v.User)
		_, _ = fmt.Fprintf(o.w, "Token expires: %s\n", v.ExpiresAt.Format("2006-01-02 15:04"))
	case response.Me:
		o.printMe(v)
	case response.User:
		o.printUser(v)
	case []response.User:
		o.printUsers(v)
	case response.Player:
		o.printPlayer(v)
	case []response.Player:
		o.printPlayers(v)
	case response.Event:
		o.printEvents([]response.Event{v})
	case []response.Event:
		o.printEvents(v)
	case response.Tournament:
		o.printTournaments([]response.Tournament{v})
	case []response.Tournament:
		o.printTournaments(v)
	case response.News:
		o.printNews([]response.News{v})
	case []response.News:
		o.printNews(v)
	case response.Health:
		_, _ = fmt.Fprintf(o.w, "Status: %s\nStorage: %s\n", v.Status, v.Storage)
	case response.Message:
		_, _ = fmt.Fprintln(o.w, v.Message)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printMe(m response.Me) {
	_, _ = fmt.Fprintf(o.w, "User: %s <%s> (#%d)\n", m.Name, m.Email, m.ID)
	_, _ = fmt.Fprintf(o.w, "Role: %s\n", m.Role)
	_, _ = fmt.Fprintf(o.w, "Status: %s\n", m.Status)
	_, _ = fmt.Fprintf(o.w, "Player: %s\n", optionalID(m.PlayerID))
}

func (o *Output) printUser(u response.User) {
	_, _ = fmt.Fprintf(o.w, "User: %s <%s> (#%d)\n", u.Name, u.Email, u.ID)
	_, _ = fmt.Fprintf(o.w, "Role: %s\n", u.Role)
	_, _ = fmt.Fprintf(o.w, "Status: %s\n", u.Status)
	_, _ = fmt.Fprintf(o.w, "Player: %s\n", optionalID(u.PlayerID))
}

func (o *Output) printUsers(users []response.User) {
	tw := tabwriter.NewWriter(o.w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tEMAIL\tNAME\tROLE\tSTATUS\tPLAYER")
	for _, u := range users {
		player := optionalID(u.PlayerID)
		if u.PlayerName != nil {
			player = fmt.Sprintf("%s (%s)", *u.PlayerName, player)
		}
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", u.ID, u.Email, u.Name, u.Role, u.Status, player)
	}
	_ = tw.Flush()
}

func (o *Output) printPlayer(p response.Player) {
	_, _ = fmt.Fprintf(o.w, "Player: %s <%s> (#%d)\n", p.Name, p.Email, p.ID)
	_, _ = fmt.Fprintf(o.w, "Phone: %s\n", optional(p.Phone))
	_, _ = fmt.Fprintf(o.w, "Official level: %s\n", optional(p.LevelOfficial))
	_, _ = fmt.Fprintf(o.w, "Apero level: %d\n", p.LevelApero)
	_, _ = fmt.Fprintf(o.w, "Technical rating: %d\n", p.RatingTechnical)
	_, _ = fmt.Fprintf(o.w, "Record: %d played, %d won, %d lost (%d%%)\n", p.MatchesPlayed, p.Wins, p.Losses, p.WinRate)
}

func (o *Output) printPlayers(players []response.Player) {
	tw := tabwriter.NewWriter(o.w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tPLAYED\tWINS\tLOSSES\tWIN%")
	for _, p := range players {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%d\t%d\n", p.ID, p.Name, p.Email, p.MatchesPlayed, p.Wins, p.Losses, p.WinRate)
	}
	_ = tw.Flush()
}

func (o *Output) printEvents(events []response.Event) {
	tw := tabwriter.NewWriter(o.w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tDATE\tNAME\tLOCATION\tPARTICIPANTS")
	for _, e := range events {
		count := strconv.Itoa(len(e.Participants))
		if e.MaxParticipants != nil {
			count += "/" + strconv.Itoa(*e.MaxParticipants)
		}
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s %s\n", e.ID, e.Date, e.Name, optional(e.Location), count, idList(e.Participants))
	}
	_ = tw.Flush()
}

func (o *Output) printTournaments(tournaments []response.Tournament) {
	tw := tabwriter.NewWriter(o.w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tDATE\tNAME\tFORMAT\tSTATUS\tPARTICIPANTS")
	for _, t := range tournaments {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d %s\n", t.ID, t.Date, t.Name, t.Format, t.Status, len(t.Participants), idList(t.Participants))
	}
	_ = tw.Flush()
}

func (o *Output) printNews(items []response.News) {
	for i, n := range items {
		if i > 0 {
			_, _ = fmt.Fprintln(o.w)
		}
		_, _ = fmt.Fprintf(o.w, "#%d %s\n", n.ID, n.Title)
		_, _ = fmt.Fprintf(o.w, "By %s on %s\n", optional(n.AuthorName), n.CreatedAt.Format("2006-01-02"))
		_, _ = fmt.Fprintln(o.w, n.Content)
	}
}

func optional(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func optionalID(id *int64) string {
	if id == nil {
		return "-"
	}
	return strconv.FormatInt(*id, 10)
}

func idList(ids []int64) string {
	if len(ids) == 0 {
		return ""
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
