package checks

import (
	"errors"
	"fmt"

	"preop-drug-check/internal/ports/workflow"
)

// Mensajes visibles para el usuario.
const (
	MissingInputMessage = "お薬の名前と手術予定日を両方入力してください。"
	KeyFailureMessage   = "APIキーの取得に失敗しました。"
	NoOutputText        = "結果が取得できませんでした。"
)

var (
	ErrMissingInput   = errors.New("drug list and surgery date are required")
	ErrTooManyDrugs   = fmt.Errorf("at most %d drugs per check", MaxDrugs)
	ErrInvalidDate    = errors.New("surgery date must be YYYY-MM-DD")
	ErrDateInPast     = errors.New("surgery date must not be before today")
	ErrKeyUnavailable = errors.New("api key unavailable")
	ErrNotFound       = errors.New("check not found")
)

// DrugError es la falla de un medicamento; aborta el check completo.
type DrugError struct {
	Drug string
	Err  error
}

func (e *DrugError) Error() string {
	var se *workflow.StatusError
	if errors.As(e.Err, &se) {
		return se.Error()
	}
	return fmt.Sprintf("「%s」の確認中にエラーが発生しました: %v", e.Drug, e.Err)
}

func (e *DrugError) Unwrap() error { return e.Err }

// FailureLine es la única línea (roja) que reemplaza todos los resultados.
func FailureLine(msg string) string {
	return fmt.Sprintf("エラーが発生しました: %s。サーバーログで詳細を確認してください。", msg)
}

// AlertMessage traduce errores de validación/key a la alerta del formulario.
// Devuelve "" si err no es un error de ese tipo.
func AlertMessage(err error) string {
	switch {
	case errors.Is(err, ErrMissingInput):
		return MissingInputMessage
	case errors.Is(err, ErrTooManyDrugs):
		return fmt.Sprintf("お薬は一度に%d件まで入力してください。", MaxDrugs)
	case errors.Is(err, ErrInvalidDate):
		return "手術予定日は YYYY-MM-DD 形式で入力してください。"
	case errors.Is(err, ErrDateInPast):
		return "手術予定日には今日以降の日付を入力してください。"
	case errors.Is(err, ErrKeyUnavailable):
		return KeyFailureMessage
	default:
		return ""
	}
}
