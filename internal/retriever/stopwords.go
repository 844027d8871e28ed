package retriever

// Spanish stopwords excluded from tokenization. This list is tuned for
// retrieval and intentionally differs from the verifier's shorter list; do
// not unify them without product review.
var stopwords = map[string]struct{}{
	"el": {}, "la": {}, "los": {}, "las": {}, "un": {}, "una": {},
	"unos": {}, "unas": {}, "de": {}, "del": {}, "a": {}, "al": {},
	"en": {}, "por": {}, "para": {}, "con": {}, "sin": {}, "sobre": {},
	"bajo": {}, "entre": {}, "y": {}, "o": {}, "pero": {}, "si": {},
	"no": {}, "es": {}, "son": {}, "está": {}, "están": {}, "ser": {},
	"estar": {}, "qué": {}, "cómo": {}, "cuál": {}, "cuáles": {},
	"quién": {}, "dónde": {}, "cuándo": {}, "me": {}, "te": {}, "se": {},
	"que": {}, "lo": {},
}

func isStopword(w string) bool {
	_, ok := stopwords[w]
	return ok
}
