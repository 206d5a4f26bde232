package communities

import "strings"

// topicRule maps a substring pattern onto topics and health goals.
// Rules are checked in order; earlier matches rank first.
type topicRule struct {
	pattern string
	topics  []string
	goodFor []string
}

const (
	maxTopics  = 5
	maxGoodFor = 6
)

var (
	defaultTopics  = []string{"health", "wellness", "lifestyle"}
	defaultGoodFor = []string{"health", "wellness", "quality of life"}
)

var healthTopics = []topicRule{
	// nutrition & diet
	{"nutrition", []string{"nutrition", "diet", "food"}, []string{"immunity", "energy", "weight", "gut", "muscle", "brain"}},
	{"diet", []string{"diet", "nutrition", "food"}, []string{"weight", "energy", "health", "gut"}},
	{"food", []string{"food", "nutrition", "diet"}, []string{"energy", "weight", "health"}},
	{"eat", []string{"nutrition", "diet", "eating"}, []string{"weight", "energy", "health", "gut"}},
	{"meal", []string{"meal planning", "nutrition", "diet"}, []string{"weight", "energy", "time management"}},
	{"calorie", []string{"diet", "weight loss", "nutrition"}, []string{"weight", "energy", "fitness"}},
	{"recipe", []string{"cooking", "food", "nutrition"}, []string{"health", "weight", "enjoyment"}},

	// gut & digestion
	{"gut", []string{"gut health", "digestion", "microbiome"}, []string{"immunity", "mental health", "inflammation", "digestion", "skin"}},
	{"digestion", []string{"digestion", "gut health", "gastrointestinal"}, []string{"gut", "immunity", "inflammation", "comfort"}},
	{"stomach", []string{"digestive health", "gut", "gastro"}, []string{"digestion", "comfort", "inflammation"}},
	{"intestine", []string{"gut health", "digestion", "microbiome"}, []string{"immunity", "digestion", "inflammation"}},
	{"ibs", []string{"IBS", "digestive disorders", "gut health"}, []string{"digestion", "pain relief", "quality of life"}},
	{"microbiome", []string{"microbiome", "gut bacteria", "digestion"}, []string{"immunity", "mental health", "digestion", "inflammation"}},
	{"probiotic", []string{"probiotics", "gut health", "supplements"}, []string{"immunity", "digestion", "gut", "mental health"}},
	{"bloat", []string{"digestive health", "gut", "nutrition"}, []string{"digestion", "comfort", "weight"}},

	// immunity & inflammation
	{"immun", []string{"immunology", "immune system", "health"}, []string{"immunity", "autoimmune", "inflammation", "disease prevention"}},
	{"autoimmune", []string{"autoimmune", "immunology", "chronic illness"}, []string{"inflammation", "pain management", "quality of life", "immunity"}},
	{"inflammation", []string{"inflammation", "health", "wellness"}, []string{"pain relief", "immunity", "chronic disease", "recovery"}},

	// fitness & exercise
	{"fitness", []string{"fitness", "exercise", "workout"}, []string{"weight", "muscle", "energy", "mental health", "strength"}},
	{"workout", []string{"workout", "exercise", "fitness"}, []string{"muscle", "weight", "strength", "endurance"}},
	{"exercise", []string{"exercise", "fitness", "activity"}, []string{"weight", "mental health", "energy", "longevity"}},
	{"gym", []string{"gym", "fitness", "strength training"}, []string{"muscle", "strength", "weight", "confidence"}},
	{"strength", []string{"strength training", "fitness", "muscle"}, []string{"muscle", "bone health", "metabolism", "confidence"}},
	{"cardio", []string{"cardio", "fitness", "endurance"}, []string{"heart health", "weight", "endurance", "energy"}},
	{"running", []string{"running", "cardio", "fitness"}, []string{"endurance", "weight", "mental health", "heart health"}},

	// weight management
	{"weight", []string{"weight loss", "diet", "fitness"}, []string{"weight", "confidence", "energy", "health"}},
	{"lose", []string{"weight loss", "diet", "fitness"}, []string{"weight", "confidence", "health", "energy"}},
	{"loseit", []string{"weight loss", "diet", "fitness"}, []string{"weight", "health", "confidence", "lifestyle"}},
	{"fat", []string{"fat loss", "weight management", "nutrition"}, []string{"weight", "body composition", "health"}},
	{"obesity", []string{"obesity", "weight management", "health"}, []string{"weight", "health", "longevity", "quality of life"}},

	// mental health
	{"mental", []string{"mental health", "psychology", "wellness"}, []string{"mental health", "stress", "mood", "quality of life"}},
	{"depression", []string{"depression", "mental health", "mood"}, []string{"mental health", "mood", "quality of life", "coping"}},
	{"anxiety", []string{"anxiety", "mental health", "stress"}, []string{"mental health", "stress", "calm", "coping"}},
	{"stress", []string{"stress management", "mental health", "wellness"}, []string{"stress", "mental health", "relaxation", "sleep"}},
	{"mood", []string{"mood", "mental health", "emotional health"}, []string{"mood", "mental health", "happiness", "balance"}},
	{"therapy", []string{"therapy", "mental health", "counseling"}, []string{"mental health", "coping", "healing", "growth"}},

	// sleep
	{"sleep", []string{"sleep", "rest", "sleep health"}, []string{"sleep", "mental health", "energy", "immunity", "recovery"}},
	{"insomnia", []string{"insomnia", "sleep disorders", "sleep"}, []string{"sleep", "mental health", "energy", "quality of life"}},
	{"rest", []string{"rest", "recovery", "sleep"}, []string{"recovery", "sleep", "energy", "performance"}},

	// skin
	{"skin", []string{"skincare", "dermatology", "beauty"}, []string{"skin", "acne", "aging", "confidence", "inflammation"}},
	{"acne", []string{"acne", "skincare", "dermatology"}, []string{"skin", "acne", "confidence", "inflammation"}},
	{"derma", []string{"dermatology", "skin health", "skincare"}, []string{"skin", "acne", "conditions", "aging"}},
	{"beauty", []string{"beauty", "skincare", "self-care"}, []string{"skin", "confidence", "self-esteem", "aging"}},
	{"wrinkle", []string{"anti-aging", "skincare", "beauty"}, []string{"aging", "skin", "confidence", "appearance"}},

	// supplements & vitamins
	{"supplement", []string{"supplements", "vitamins", "nutrition"}, []string{"immunity", "energy", "cognition", "health", "performance"}},
	{"vitamin", []string{"vitamins", "supplements", "nutrition"}, []string{"immunity", "energy", "bone health", "cognition"}},
	{"mineral", []string{"minerals", "nutrition", "supplements"}, []string{"bone health", "energy", "immunity", "health"}},
	{"nootropic", []string{"nootropics", "cognitive enhancement", "supplements"}, []string{"cognition", "focus", "memory", "productivity"}},

	// conditions
	{"diabetes", []string{"diabetes", "blood sugar", "metabolic health"}, []string{"blood sugar", "weight", "energy", "longevity"}},
	{"blood sugar", []string{"blood sugar", "diabetes", "metabolic health"}, []string{"blood sugar", "energy", "weight", "diabetes"}},
	{"insulin", []string{"insulin", "diabetes", "metabolic health"}, []string{"blood sugar", "weight", "energy", "diabetes"}},
	{"heart", []string{"heart health", "cardiovascular", "cardiology"}, []string{"heart health", "longevity", "exercise", "blood pressure"}},
	{"cardiac", []string{"cardiac", "heart health", "cardiovascular"}, []string{"heart health", "longevity", "prevention"}},
	{"cholesterol", []string{"cholesterol", "heart health", "cardiovascular"}, []string{"heart health", "longevity", "diet", "prevention"}},
	{"blood pressure", []string{"blood pressure", "cardiovascular", "heart health"}, []string{"heart health", "stress", "longevity"}},
	{"cancer", []string{"cancer", "oncology", "chronic illness"}, []string{"cancer support", "quality of life", "treatment", "prevention"}},
	{"thyroid", []string{"thyroid", "endocrine", "hormones"}, []string{"energy", "weight", "mood", "hormones"}},

	// medical & general
	{"doctor", []string{"medical advice", "health", "diagnosis"}, []string{"health", "diagnosis", "treatment", "symptoms"}},
	{"doc", []string{"medical advice", "health", "diagnosis"}, []string{"health", "diagnosis", "treatment", "prevention"}},
	{"medical", []string{"medical", "health", "healthcare"}, []string{"health", "diagnosis", "treatment", "prevention"}},
	{"health", []string{"health", "wellness", "lifestyle"}, []string{"health", "wellness", "longevity", "quality of life"}},
	{"wellness", []string{"wellness", "health", "lifestyle"}, []string{"wellness", "balance", "quality of life", "happiness"}},

	// hydration
	{"water", []string{"hydration", "water", "health"}, []string{"hydration", "energy", "skin", "digestion", "recovery"}},
	{"hydrat", []string{"hydration", "water intake", "health"}, []string{"hydration", "energy", "performance", "recovery"}},

	// fasting
	{"fast", []string{"fasting", "intermittent fasting", "diet"}, []string{"weight", "metabolism", "longevity", "autophagy"}},
	{"intermittent", []string{"intermittent fasting", "fasting", "diet"}, []string{"weight", "metabolism", "energy", "longevity"}},

	// muscle
	{"muscle", []string{"muscle building", "fitness", "bodybuilding"}, []string{"muscle", "strength", "metabolism", "confidence"}},
	{"protein", []string{"protein", "nutrition", "muscle building"}, []string{"muscle", "recovery", "weight", "satiety"}},
	{"bodybuilding", []string{"bodybuilding", "muscle building", "fitness"}, []string{"muscle", "strength", "physique", "discipline"}},

	// pain & chronic conditions
	{"pain", []string{"pain management", "chronic pain", "health"}, []string{"pain relief", "quality of life", "mobility", "function"}},
	{"chronic", []string{"chronic illness", "chronic conditions", "health"}, []string{"quality of life", "management", "coping", "support"}},
	{"arthritis", []string{"arthritis", "joint health", "chronic pain"}, []string{"pain relief", "mobility", "inflammation", "quality of life"}},

	// energy & performance
	{"energy", []string{"energy", "vitality", "performance"}, []string{"energy", "productivity", "endurance", "recovery"}},
	{"fatigue", []string{"fatigue", "energy", "chronic fatigue"}, []string{"energy", "recovery", "quality of life", "diagnosis"}},
	{"performance", []string{"performance", "optimization", "fitness"}, []string{"performance", "energy", "endurance", "results"}},

	// cognition
	{"brain", []string{"brain health", "cognitive function", "neurology"}, []string{"cognition", "memory", "focus", "neuroprotection"}},
	{"memory", []string{"memory", "cognitive function", "brain health"}, []string{"memory", "cognition", "brain health", "aging"}},
	{"focus", []string{"focus", "concentration", "productivity"}, []string{"focus", "productivity", "performance", "cognition"}},
	{"cognit", []string{"cognitive function", "brain health", "mental performance"}, []string{"cognition", "memory", "focus", "brain health"}},
}

// SuggestCategories matches the health topic patterns against the name,
// description and keywords. Results are de-duplicated in match order and
// capped at five topics and six goals, with generic fallbacks.
func SuggestCategories(name, description string, keywords []string) (topics, goodFor []string) {
	text := strings.ToLower(name + " " + description + " " + strings.Join(keywords, " "))

	var allTopics, allGoals []string
	for _, rule := range healthTopics {
		if strings.Contains(text, rule.pattern) {
			allTopics = append(allTopics, rule.topics...)
			allGoals = append(allGoals, rule.goodFor...)
		}
	}

	topics = firstUnique(allTopics, maxTopics)
	goodFor = firstUnique(allGoals, maxGoodFor)
	if len(topics) == 0 {
		topics = append([]string(nil), defaultTopics...)
	}
	if len(goodFor) == 0 {
		goodFor = append([]string(nil), defaultGoodFor...)
	}
	return topics, goodFor
}

func firstUnique(items []string, max int) []string {
	seen := make(map[string]struct{}, len(items))
	var out []string
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
		if len(out) == max {
			break
		}
	}
	return out
}
