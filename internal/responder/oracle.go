package responder

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"github.com/myrjola/whodunit/internal/errors"
	"github.com/myrjola/whodunit/internal/interrogation"
	"github.com/myrjola/whodunit/internal/models"
	"github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"log/slog"
	"regexp"
	"strings"
	"text/template"
)

//go:embed brief.tmpl
var briefTemplate string

var brief = template.Must(template.New("brief").Parse(briefTemplate))

var tagPattern = regexp.MustCompile(`\[(REVEAL:([A-Z]+)|SECRET:([a-z]+):(.+?))\]`)

// ChatCompleter is the part of ai.Client the Oracle needs.
type ChatCompleter interface {
	SyncCompletion(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error)
	Ping(ctx context.Context) error
}

// Oracle answers in character through a language model. The model gets a brief of the suspect's facts and tags its
// answer with the single most significant revelation, which becomes the structured side effect.
type Oracle struct {
	c        *models.Case
	classify *interrogation.Classifier
	client   ChatCompleter
	logger   *slog.Logger
	tracer   trace.Tracer
}

func NewOracle(c *models.Case, client ChatCompleter, logger *slog.Logger) *Oracle {
	return &Oracle{
		c:        c,
		classify: interrogation.NewClassifier(c),
		client:   client,
		logger:   logger.With("source", "responder.Oracle"),
		tracer:   otel.Tracer("github.com/myrjola/whodunit/internal/responder"),
	}
}

// Available reports whether the model endpoint answers.
func (o *Oracle) Available(ctx context.Context) bool {
	if err := o.client.Ping(ctx); err != nil {
		o.logger.LogAttrs(ctx, slog.LevelInfo, "oracle unavailable", errors.SlogError(err))
		return false
	}
	return true
}

func (o *Oracle) Respond(ctx context.Context, req interrogation.Request) (interrogation.Reply, error) {
	ctx, span := o.tracer.Start(ctx, "Oracle.Respond", trace.WithAttributes(
		attribute.String("suspect_id", req.SuspectID),
		attribute.Int("case_number", o.c.CaseNumber),
	))
	defer span.End()

	reply, err := o.respond(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return interrogation.Reply{}, err
	}
	span.SetAttributes(attribute.String("intent", string(reply.Intent)))
	return reply, nil
}

func (o *Oracle) respond(ctx context.Context, req interrogation.Request) (interrogation.Reply, error) {
	ch, err := o.c.Character(req.SuspectID)
	if err != nil {
		return interrogation.Reply{}, err
	}
	testimony, confronted := o.classify.FindConfrontation(req.Question, ch, req.Disclosures)

	system, err := o.brief(ch, testimony)
	if err != nil {
		return interrogation.Reply{}, err
	}
	messages := make([]openai.ChatCompletionMessage, 0, len(req.History)+2) //nolint:mnd // system and question
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: system})
	for _, turn := range req.History {
		role := openai.ChatMessageRoleUser
		if turn.Role == openai.ChatMessageRoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: turn.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.Question})

	raw, err := o.client.SyncCompletion(ctx, messages)
	if err != nil {
		return interrogation.Reply{}, errors.Wrap(errors.Join(ErrUnavailable, err), "oracle completion")
	}
	reply, err := parseReply(raw, ch, o.c)
	if err != nil {
		return interrogation.Reply{}, err
	}

	// State changes only once the answer is usable so a fallback answer starts from the same state.
	if confronted {
		o.classify.ApplyConfrontation(req.Question, ch, req.Disclosures)
	}
	if reply.Disclosure != nil {
		ch.Disclosure.SecretsRevealed[reply.Disclosure.AboutCharacterID] = true
	}
	reply.Intent = o.classify.Classify(req.Question, ch, req.Disclosures)
	return reply, nil
}

type briefOther struct {
	ID     string
	Name   string
	Reason string
	Secret string
}

func (o *Oracle) brief(ch *models.Character, testimony *models.Disclosure) (string, error) {
	data := struct {
		Me            models.Suspect
		Facts         models.CharacterFacts
		Case          *models.Case
		VictimOpinion string
		PreviousOwner string
		Others        []briefOther
		Presented     []string
	}{
		Me:        ch.Facts.Suspect,
		Facts:     ch.Facts,
		Case:      o.c,
		Presented: append([]string(nil), ch.Disclosure.PresentedEvidence...),
	}
	if rel, ok := ch.Facts.Relationship(models.VictimID); ok {
		data.VictimOpinion = rel.Reason
	}
	if owner := ch.Facts.Item.OriginalOwnerID; owner != ch.ID() {
		if prev, err := o.c.Character(owner); err == nil {
			data.PreviousOwner = prev.Name()
		}
	}
	for _, rel := range ch.Facts.Relationships {
		if rel.TargetID == models.VictimID {
			continue
		}
		data.Others = append(data.Others, briefOther{
			ID:     rel.TargetID,
			Name:   rel.TargetName,
			Reason: rel.Reason,
			Secret: rel.Secret,
		})
	}
	if testimony != nil {
		from := testimony.FromCharacterID
		if src, err := o.c.Character(from); err == nil {
			from = src.Name()
		}
		data.Presented = append(data.Presented, fmt.Sprintf("%s told the detective: %q", from, testimony.Info))
	}

	var buf bytes.Buffer
	if err := brief.Execute(&buf, data); err != nil {
		return "", errors.Wrap(err, "execute brief template")
	}
	return buf.String(), nil
}

// parseReply strips the evidence tag from raw and turns it into side effects. Facts come from the case, never from
// the model, so a tag can only reveal what is true.
func parseReply(raw string, ch *models.Character, c *models.Case) (interrogation.Reply, error) {
	match := tagPattern.FindStringSubmatch(raw)
	text := strings.TrimSpace(tagPattern.ReplaceAllString(raw, ""))
	if text == "" {
		return interrogation.Reply{}, errors.Wrap(ErrMalformed, "empty reply")
	}
	reply := interrogation.Reply{Text: text}
	if match == nil {
		return reply, nil
	}

	f := ch.Facts
	u := &reply.Evidence
	switch category := match[2]; category {
	case "":
		aboutID, info := match[3], strings.TrimSpace(match[4])
		rel, ok := f.Relationship(aboutID)
		if !ok || aboutID == models.VictimID {
			return interrogation.Reply{}, errors.Wrap(ErrMalformed, "secret about unknown character",
				slog.String("about_id", aboutID))
		}
		reply.Disclosure = &models.Disclosure{
			FromCharacterID:  ch.ID(),
			AboutCharacterID: aboutID,
			Info:             info,
			InfoType:         rel.SecretCategory,
		}
	case "NAME":
		u.NameRevealed = true
	case "RELATIONSHIP":
		u.RelationshipRevealed = true
		u.RelationshipText = f.RelationshipToVictim
	case "ITEM":
		u.ItemRevealed = true
		u.ItemText = f.Item.Name
	case "MOTIVE":
		if f.Motive.HasMotive {
			u.MotiveRevealed = true
			u.MotiveText = f.Motive.Description
		}
	case "MEANS":
		if f.Traits.Means {
			u.MeansRevealed = true
			u.MeansText = "has access to a weapon like the " + c.Crime.WeaponName
		}
	case "OPPORTUNITY":
		if f.Alibi.AtCrimeScene {
			u.OpportunityRevealed = true
			u.OpportunityText = f.Alibi.Description
		}
	default:
		return interrogation.Reply{}, errors.Wrap(ErrMalformed, "unknown reveal tag", slog.String("tag", category))
	}
	return reply, nil
}
