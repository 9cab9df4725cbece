package decode

import (
	"regexp"

	qtpeek "github.com/qtpeek/qtpeek"
	"github.com/qtpeek/qtpeek/resolver"
)

// pattern maps a type-name regular expression to a decoder constructor.
type pattern struct {
	re    *regexp.Regexp
	build func(e *Engine, v qtpeek.Value) Decoder
}

// defaultPatterns is the ordered dispatch table. Insertion order is
// significant: the first matching entry wins, so aliases with fixed element
// types (QStringList) precede nothing they could shadow and generic entries
// never swallow more specific ones.
func defaultPatterns() []pattern {
	entry := func(expr string, build func(e *Engine, v qtpeek.Value) Decoder) pattern {
		return pattern{re: regexp.MustCompile(expr), build: build}
	}

	templateArg := func(name string, i int) string {
		_, args := resolver.SplitTemplate(name)
		if i < len(args) {
			return args[i]
		}
		return ""
	}

	return []pattern{
		entry(`^QString$`, func(e *Engine, v qtpeek.Value) Decoder {
			return &stringDecoder{e: e, val: v}
		}),
		entry(`^QByteArray$`, func(e *Engine, v qtpeek.Value) Decoder {
			return &byteArrayDecoder{e: e, val: v}
		}),
		entry(`^QList<.*>$`, func(e *Engine, v qtpeek.Value) Decoder {
			return &listDecoder{e: e, val: v, container: "QList", elemName: templateArg(v.TypeName, 0)}
		}),
		entry(`^QStringList$`, func(e *Engine, v qtpeek.Value) Decoder {
			return &listDecoder{e: e, val: v, container: "QStringList", elemName: "QString"}
		}),
		entry(`^QQueue`, func(e *Engine, v qtpeek.Value) Decoder {
			return &listDecoder{e: e, val: v, container: "QQueue", elemName: templateArg(v.TypeName, 0)}
		}),
		entry(`^QVector<.*>$`, func(e *Engine, v qtpeek.Value) Decoder {
			return &vectorDecoder{e: e, val: v, container: "QVector", elemName: templateArg(v.TypeName, 0)}
		}),
		entry(`^QStack<.*>$`, func(e *Engine, v qtpeek.Value) Decoder {
			return &vectorDecoder{e: e, val: v, container: "QStack", elemName: templateArg(v.TypeName, 0)}
		}),
		entry(`^QLinkedList<.*>$`, func(e *Engine, v qtpeek.Value) Decoder {
			return &linkedListDecoder{e: e, val: v, elemName: templateArg(v.TypeName, 0)}
		}),
		entry(`^QMap<.*>$`, func(e *Engine, v qtpeek.Value) Decoder {
			return &mapDecoder{e: e, val: v, container: "QMap",
				keyName: templateArg(v.TypeName, 0), valName: templateArg(v.TypeName, 1)}
		}),
		entry(`^QMultiMap<.*>$`, func(e *Engine, v qtpeek.Value) Decoder {
			return &mapDecoder{e: e, val: v, container: "QMultiMap",
				keyName: templateArg(v.TypeName, 0), valName: templateArg(v.TypeName, 1)}
		}),
		entry(`^QHash<.*>$`, func(e *Engine, v qtpeek.Value) Decoder {
			return &hashDecoder{e: e, val: v, container: "QHash",
				keyName: templateArg(v.TypeName, 0), valName: templateArg(v.TypeName, 1)}
		}),
		entry(`^QMultiHash<.*>$`, func(e *Engine, v qtpeek.Value) Decoder {
			return &hashDecoder{e: e, val: v, container: "QMultiHash",
				keyName: templateArg(v.TypeName, 0), valName: templateArg(v.TypeName, 1)}
		}),
		entry(`^QDate$`, func(e *Engine, v qtpeek.Value) Decoder {
			return &dateDecoder{e: e, val: v}
		}),
		entry(`^QTime$`, func(e *Engine, v qtpeek.Value) Decoder {
			return &timeDecoder{e: e, val: v}
		}),
		entry(`^QDateTime$`, func(e *Engine, v qtpeek.Value) Decoder {
			return &dateTimeDecoder{e: e, val: v}
		}),
		entry(`^QUrl$`, func(e *Engine, v qtpeek.Value) Decoder {
			return &urlDecoder{e: e, val: v}
		}),
		entry(`^QSet<.*>$`, func(e *Engine, v qtpeek.Value) Decoder {
			return &setDecoder{e: e, val: v, elemName: templateArg(v.TypeName, 0)}
		}),
		entry(`^QChar$`, func(e *Engine, v qtpeek.Value) Decoder {
			return &charDecoder{e: e, val: v}
		}),
	}
}
