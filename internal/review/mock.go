package review

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/TobiSchelling/DailyPen/internal/store"
)

var (
	writingDimensions = []string{"表达清晰度", "逻辑连贯性", "用词准确性"}
	speechDimensions  = []string{"结构完整性", "开场吸引力", "论证说服力", "收尾力度"}
)

var writingSuggestions = []string{
	"尝试在开头使用具体场景描写，而非直接陈述观点，更容易抓住读者注意力。",
	"部分长句可以拆分为短句，增强节奏感和可读性。",
	"结尾处可以回扣开头的意象，形成「首尾呼应」的闭环结构。",
	"适当加入一些感官描写（视觉、听觉、触觉），让文字更有画面感。",
}

var speechSuggestions = []string{
	"开场可以尝试用一个悬念式的问题，让听众产生好奇心。",
	"每个论点之间需要更清晰的过渡句，帮助听众跟上你的思路。",
	"收尾可以使用「回旋结构」，重复开头的核心句，增强记忆点。",
	"尝试加入一个具体的个人故事或案例，增强说服力和情感共鸣。",
}

const writingReview = `整体表达流畅，思路清晰。文章结构基本完整，开头能较好地引入主题。

在用词方面，部分表达可以更加精准。例如一些常见的形容词可以替换为更具画面感的动词或比喻，让文字的表现力更强。

逻辑上，主要论点之间的衔接还可以加强，建议在段落过渡处添加关联词或承上启下的过渡句。结尾部分有提升空间，可以通过回扣主题或留下思考来增强收束感。`

const speechReview = `演讲结构较为完整，能看出有意识地进行了开场、主体、结尾的安排。

开场部分表现不错，能够吸引注意力。主体论证环节，论据基本充实，但可以尝试使用更多具体案例和数据来增强说服力。

收尾部分还有提升空间，建议使用更有力的行动号召或总结性金句来结束，让听众印象深刻。整体来说，如果能在节奏感和情感起伏上做更多设计，演讲效果会更上一层楼。`

const writingRewrite = `清晨的阳光斜斜地穿过窗帘缝隙，在书桌上投下一道细长的光影。我坐在那里，手边的咖啡已经凉了，但我没有注意到，我的注意力全部被眼前的文字吸引。

这就是阅读的力量：它不需要宏大的场景，不需要特殊的道具，只需要一个人、一段文字、和一小段不被打扰的时间。`

const speechRewrite = `想象一下，你站在一个十字路口。左边是一条平坦的柏油路，你看得到终点；右边是一条看不见尽头的小径，杂草丛生。你会走哪一条？

大多数人会选左边。但今天我想告诉你，那些改变世界的人，几乎无一例外地走了右边那条路。`

// Mock generates canned reviews with random scores between 6 and 9.
type Mock struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewMock returns a Mock seeded from the clock.
func NewMock() *Mock {
	return NewMockWithSource(rand.NewSource(time.Now().UnixNano()))
}

// NewMockWithSource returns a Mock drawing scores from src.
func NewMockWithSource(src rand.Source) *Mock {
	return &Mock{rng: rand.New(src)}
}

// Generate implements Generator.
func (m *Mock) Generate(target store.TargetType, targetID string) store.NewReview {
	dims := writingDimensions
	suggestions := writingSuggestions
	text, rewrite := writingReview, writingRewrite
	if target == store.TargetSpeech {
		dims = speechDimensions
		suggestions = speechSuggestions
		text, rewrite = speechReview, speechRewrite
	}

	scores := make(map[string]float64, len(dims))
	m.mu.Lock()
	for _, d := range dims {
		scores[d] = math.Round((6+m.rng.Float64()*3)*10) / 10
	}
	m.mu.Unlock()

	return store.NewReview{
		TargetType:    target,
		TargetID:      targetID,
		ReviewContent: text,
		Scores:        scores,
		Suggestions:   append([]string(nil), suggestions...),
		RewriteDemo:   rewrite,
	}
}
