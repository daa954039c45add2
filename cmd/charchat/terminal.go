package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"character-chat/internal/catalog"
	"character-chat/internal/domain"
	"character-chat/internal/session"
	"character-chat/internal/usecase"
)

// terminal renders a session as a line-oriented chat.
type terminal struct {
	in  *bufio.Scanner
	out io.Writer
	s   *session.Session
	cat *catalog.Catalog
}

func newTerminal(in io.Reader, out io.Writer, s *session.Session, cat *catalog.Catalog) *terminal {
	return &terminal{in: bufio.NewScanner(in), out: out, s: s, cat: cat}
}

func (t *terminal) run(ctx context.Context) error {
	t.printHeader()
	for _, e := range t.s.Transcript() {
		t.printEntry(e)
	}
	for {
		line, ok := t.prompt("> ")
		if !ok {
			return nil
		}
		switch {
		case line == "/quit" || line == "/exit":
			return nil
		case line == "/characters":
			if err := printCharacters(t.out, t.cat.All()); err != nil {
				return err
			}
			continue
		case strings.HasPrefix(line, "/persona "):
			if err := t.s.SelectPersona(strings.TrimSpace(strings.TrimPrefix(line, "/persona "))); err != nil {
				fmt.Fprintln(t.out, "알 수 없는 캐릭터입니다. /characters 로 목록을 확인하세요.")
				continue
			}
			t.printHeader()
			t.printEntry(t.s.Transcript()[0])
			continue
		case strings.HasPrefix(line, "/provider "):
			t.s.SetProvider(domain.ProviderMode(strings.TrimSpace(strings.TrimPrefix(line, "/provider "))))
			fmt.Fprintf(t.out, "provider: %s\n", t.s.Provider())
			continue
		}

		entry, err := t.s.Send(ctx, line)
		switch {
		case errors.Is(err, session.ErrBusy), reasonOf(err) == "empty_message":
			continue
		case err != nil:
			t.printEntry(lastEntry(t.s.Transcript()))
		case entry.ID != "":
			t.printEntry(entry)
		}
		t.popups(ctx)
	}
}

func (t *terminal) popups(ctx context.Context) {
	if p := t.s.PaymentPopup(); p != nil {
		t.runPayment(ctx, p)
	}
	if sp := t.s.SurveyPopup(); sp != nil {
		t.runSurvey(ctx, sp)
	}
}

func (t *terminal) runPayment(ctx context.Context, p *session.PaymentPopup) {
	defer func() {
		if err := p.Close(ctx); err != nil {
			slog.Warn("payment acknowledgement not persisted", "err", err)
		}
	}()

	fmt.Fprintln(t.out, "\n💎 무료 메시지를 모두 사용했어요!")
	fmt.Fprintln(t.out, "프리미엄으로 업그레이드하고 무제한으로 대화하세요.")
	choice, ok := t.prompt("[1] 결제하기  [2] 닫기: ")
	if !ok || choice != "1" {
		return
	}
	if err := p.OpenEmailForm(); err != nil {
		return
	}
	fmt.Fprintln(t.out, "\n아직 준비 중인 기능이에요. 이메일을 남겨주시면 출시 소식을 가장 먼저 알려드릴게요.")
	for p.Stage() != session.StageSubmitted {
		email, ok := t.prompt("이메일 (닫으려면 q): ")
		if !ok || email == "q" {
			return
		}
		consent, ok := t.prompt("개인정보 수집 및 이용에 동의하십니까? (y/n): ")
		if !ok {
			return
		}
		err := p.SubmitEmail(ctx, email, strings.EqualFold(consent, "y"))
		if err != nil {
			fmt.Fprintln(t.out, emailFailureCopy(err))
		}
	}
	fmt.Fprintln(t.out, "✅ 등록 완료! 출시 소식을 가장 먼저 알려드릴게요.")
	select {
	case <-p.SurveyRevealed():
	case <-ctx.Done():
	}
}

func emailFailureCopy(err error) string {
	var ucErr *usecase.Error
	if errors.As(err, &ucErr) {
		switch {
		case ucErr.Code == usecase.ErrorConflict:
			return "이미 등록된 이메일 주소입니다."
		case ucErr.Reason == "consent_required":
			return "개인정보 수집 및 이용에 동의해주세요."
		case ucErr.Reason == "empty_email":
			return "이메일 주소를 입력해주세요."
		case ucErr.Code == usecase.ErrorInvalidInput:
			return "유효한 이메일 주소를 입력해주세요."
		}
	}
	return "이메일 등록에 실패했습니다. 다시 시도해주세요."
}

func (t *terminal) runSurvey(ctx context.Context, sp *session.SurveyPopup) {
	defer func() {
		if err := sp.Close(ctx); err != nil {
			slog.Warn("survey acknowledgement not persisted", "err", err)
		}
	}()

	fmt.Fprintln(t.out, "\n📝 어떤 기능을 원하시나요?")
	for i, f := range session.Features {
		fmt.Fprintf(t.out, "  [%d] %s\n", i+1, f.Label)
	}
	picks, ok := t.prompt("번호를 쉼표로 구분해 입력하세요 (없으면 Enter): ")
	if !ok {
		return
	}
	for _, raw := range strings.Split(picks, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > len(session.Features) {
			fmt.Fprintf(t.out, "%q 는 목록에 없는 번호입니다.\n", raw)
			continue
		}
		_ = sp.Toggle(session.Features[n-1].ID)
	}
	comment, ok := t.prompt("추가 의견 (선택): ")
	if !ok {
		return
	}
	sp.SetComment(comment)

	for !sp.Submitted() {
		answer, ok := t.prompt("제출하시겠습니까? (y/n): ")
		if !ok || !strings.EqualFold(answer, "y") {
			return
		}
		if err := sp.Submit(ctx); err != nil {
			fmt.Fprintln(t.out, "설문 제출에 실패했습니다. 다시 시도해주세요.")
		}
	}
	fmt.Fprintln(t.out, "🎉 제출 완료! 소중한 의견을 주셔서 감사합니다.")
}

func (t *terminal) prompt(label string) (string, bool) {
	fmt.Fprint(t.out, label)
	if !t.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(t.in.Text()), true
}

func (t *terminal) printHeader() {
	p := t.s.Persona()
	fmt.Fprintf(t.out, "\n%s %s · %s\n", p.Emoji, p.Name, p.Description)
}

func (t *terminal) printEntry(e domain.TranscriptEntry) {
	if e.Role == domain.RoleUser {
		fmt.Fprintf(t.out, "나: %s\n", e.Content)
		return
	}
	fmt.Fprintf(t.out, "%s: %s\n", t.s.Persona().Name, e.Content)
}

func lastEntry(tr []domain.TranscriptEntry) domain.TranscriptEntry {
	if len(tr) == 0 {
		return domain.TranscriptEntry{}
	}
	return tr[len(tr)-1]
}

func reasonOf(err error) string {
	var ucErr *usecase.Error
	if errors.As(err, &ucErr) {
		return ucErr.Reason
	}
	return ""
}
