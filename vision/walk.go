package vision

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
)

// quitWords end an interactive walk.
var quitWords = []string{"quit", "exit", "종료", "끝"}

// Asker answers a question about one frame. *Describer satisfies it.
type Asker interface {
	Ask(ctx context.Context, frame Frame, question string) (string, error)
}

// Walk steps through frames printing each description and answering
// questions read from in. A blank line advances to the next frame; a quit
// word or end of input stops the walk. Failed answers are printed and the
// walk continues.
func Walk(ctx context.Context, frames []Frame, desc *Description, asker Asker, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	rule := strings.Repeat("=", 60)

	fmt.Fprintf(out, "\n%s\n대화형 모드 시작!\n", rule)
	fmt.Fprintln(out, "- 각 프레임에서 질문할 수 있습니다")
	fmt.Fprintln(out, "- 질문이 없으면 Enter를 눌러 다음 프레임으로")
	fmt.Fprintln(out, "- 'quit' 입력시 종료")
	fmt.Fprintf(out, "%s\n", rule)

	for _, frame := range frames {
		fmt.Fprintf(out, "\n[%s]\n", frame.Label())
		if text, ok := desc.For(frame); ok {
			fmt.Fprintln(out, text)
		} else {
			fmt.Fprintln(out, "(기본 설명 없음)")
		}

		for {
			if err := ctx.Err(); err != nil {
				return err
			}

			fmt.Fprint(out, "\nQuestion: ")
			if !scanner.Scan() {
				return scanner.Err()
			}

			question := strings.TrimSpace(scanner.Text())
			if question == "" {
				break
			}
			if slices.Contains(quitWords, strings.ToLower(question)) {
				fmt.Fprintln(out, "\n대화형 모드를 종료합니다.")
				return nil
			}

			answer, err := asker.Ask(ctx, frame, question)
			if err != nil {
				fmt.Fprintf(out, "Error: %v\n", err)
				continue
			}
			fmt.Fprintf(out, "Answer: %s\n", answer)
		}
	}

	fmt.Fprintf(out, "\n%s\n모든 프레임 분석 완료!\n%s\n", rule, rule)
	return nil
}
