package entity

// Model идентификатор модели тэггера на удалённом сервисе
type Model string

const (
	ModelSwinV2V3     Model = "SmilingWolf/wd-swinv2-tagger-v3"
	ModelConvNextV3   Model = "SmilingWolf/wd-convnext-tagger-v3"
	ModelViTV3        Model = "SmilingWolf/wd-vit-tagger-v3"
	ModelMOATV2       Model = "SmilingWolf/wd-v1-4-moat-tagger-v2"
	ModelSwinV2V2     Model = "SmilingWolf/wd-v1-4-swinv2-tagger-v2"
	ModelConvNextV2   Model = "SmilingWolf/wd-v1-4-convnext-tagger-v2"
	ModelConvNextV2V2 Model = "SmilingWolf/wd-v1-4-convnextv2-tagger-v2"
	ModelViTV2        Model = "SmilingWolf/wd-v1-4-vit-tagger-v2"
)

// DefaultModel модель по умолчанию
const DefaultModel = ModelSwinV2V3

// Models перечисляет все поддерживаемые модели
var Models = []Model{
	ModelSwinV2V3,
	ModelConvNextV3,
	ModelViTV3,
	ModelMOATV2,
	ModelSwinV2V2,
	ModelConvNextV2,
	ModelConvNextV2V2,
	ModelViTV2,
}

// Valid сообщает, входит ли модель в список поддерживаемых
func (m Model) Valid() bool {
	for _, known := range Models {
		if m == known {
			return true
		}
	}
	return false
}

// Thresholds порог отбора тэгов одной категории
type Thresholds struct {
	Threshold float64 // фиксированный порог, 0..1
	UseMCut   bool    // использовать адаптивный порог MCut вместо фиксированного
}

// TaggerSettings настройки тэггера, общие для всех запросов
type TaggerSettings struct {
	Model     Model
	General   Thresholds
	Character Thresholds
}

// NewRequest собирает запрос на разметку для конкретного изображения
func (s TaggerSettings) NewRequest(imageURL string) TaggingRequest {
	return TaggingRequest{
		ImageURL:           imageURL,
		Model:              s.Model,
		GeneralThreshold:   s.General.Threshold,
		GeneralUseMCut:     s.General.UseMCut,
		CharacterThreshold: s.Character.Threshold,
		CharacterUseMCut:   s.Character.UseMCut,
	}
}

// TaggingRequest запрос на разметку одного изображения
type TaggingRequest struct {
	ImageURL           string
	Model              Model
	GeneralThreshold   float64
	GeneralUseMCut     bool
	CharacterThreshold float64
	CharacterUseMCut   bool
}

// Confidence метка и её вероятность
type Confidence struct {
	Label      string
	Confidence float64
}

// TaggingResult итог разметки изображения.
// Порядок уверенностей сохраняется таким, каким его вернул сервис.
type TaggingResult struct {
	GeneralTags          string       // тэги через запятую
	CharacterLabel       *string      // nil, если персонаж не распознан
	CharacterConfidences []Confidence // распределение по персонажам
	RatingLabel          string       // возрастной рейтинг
	RatingConfidences    []Confidence // распределение по рейтингам
}

// HasCharacter сообщает, распознан ли персонаж
func (r TaggingResult) HasCharacter() bool {
	return r.CharacterLabel != nil
}
