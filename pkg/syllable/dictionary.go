// Package syllable holds the table of valid Mandarin syllables and the greedy
// matcher that segments romanized text against it.
package syllable

import (
	"sort"
	"sync"

	"github.com/tchap/go-patricia/v2/patricia"
)

// MaxLen is the length of the longest syllable in the table ("chuang", "zhuang", ...).
const MaxLen = 6

// spellings lists every accepted syllable: lowercase, no tones, ü written as v.
// lue/nue are kept next to lve/nve since most IMEs accept both.
var spellings = []string{
	// standalone vowels
	"a", "o", "e", "ai", "ei", "ao", "ou", "an", "en", "ang", "eng", "er",
	// b
	"ba", "bo", "bai", "bei", "bao", "ban", "ben", "bang", "beng", "bi", "bie", "biao", "bian", "bin", "bing", "bu",
	// p
	"pa", "po", "pai", "pei", "pao", "pou", "pan", "pen", "pang", "peng", "pi", "pie", "piao", "pian", "pin", "ping", "pu",
	// m
	"ma", "mo", "me", "mai", "mei", "mao", "mou", "man", "men", "mang", "meng", "mi", "mie", "miao", "miu", "mian", "min", "ming", "mu",
	// f
	"fa", "fo", "fei", "fou", "fan", "fen", "fang", "feng", "fu",
	// d
	"da", "de", "dai", "dei", "dao", "dou", "dan", "den", "dang", "deng", "dong", "di", "die", "diao", "diu", "dian", "ding", "du", "duo", "dui", "duan", "dun",
	// t
	"ta", "te", "tai", "tei", "tao", "tou", "tan", "tang", "teng", "tong", "ti", "tie", "tiao", "tian", "ting", "tu", "tuo", "tui", "tuan", "tun",
	// n
	"na", "ne", "nai", "nei", "nao", "nou", "nan", "nen", "nang", "neng", "nong", "ni", "nie", "niao", "niu", "nian", "nin", "niang", "ning", "nu", "nuo", "nuan", "nv", "nve", "nue",
	// l
	"la", "le", "lai", "lei", "lao", "lou", "lan", "lang", "leng", "long", "li", "lia", "lie", "liao", "liu", "lian", "lin", "liang", "ling", "lu", "luo", "luan", "lun", "lv", "lve", "lue",
	// g
	"ga", "ge", "gai", "gei", "gao", "gou", "gan", "gen", "gang", "geng", "gong", "gu", "gua", "guo", "guai", "gui", "guan", "gun", "guang",
	// k
	"ka", "ke", "kai", "kei", "kao", "kou", "kan", "ken", "kang", "keng", "kong", "ku", "kua", "kuo", "kuai", "kui", "kuan", "kun", "kuang",
	// h
	"ha", "he", "hai", "hei", "hao", "hou", "han", "hen", "hang", "heng", "hong", "hu", "hua", "huo", "huai", "hui", "huan", "hun", "huang",
	// j
	"ji", "jia", "jie", "jiao", "jiu", "jian", "jin", "jiang", "jing", "jiong", "ju", "jue", "juan", "jun",
	// q
	"qi", "qia", "qie", "qiao", "qiu", "qian", "qin", "qiang", "qing", "qiong", "qu", "que", "quan", "qun",
	// x
	"xi", "xia", "xie", "xiao", "xiu", "xian", "xin", "xiang", "xing", "xiong", "xu", "xue", "xuan", "xun",
	// zh
	"zha", "zhe", "zhi", "zhai", "zhei", "zhao", "zhou", "zhan", "zhen", "zhang", "zheng", "zhong", "zhu", "zhua", "zhuo", "zhuai", "zhui", "zhuan", "zhun", "zhuang",
	// ch
	"cha", "che", "chi", "chai", "chao", "chou", "chan", "chen", "chang", "cheng", "chong", "chu", "chua", "chuo", "chuai", "chui", "chuan", "chun", "chuang",
	// sh
	"sha", "she", "shi", "shai", "shei", "shao", "shou", "shan", "shen", "shang", "sheng", "shu", "shua", "shuo", "shuai", "shui", "shuan", "shun", "shuang",
	// r
	"ran", "ren", "rang", "reng", "rong", "ri", "ru", "rua", "ruo", "rui", "ruan", "run",
	// z
	"za", "ze", "zi", "zai", "zei", "zao", "zou", "zan", "zen", "zang", "zeng", "zong", "zu", "zuo", "zui", "zuan", "zun",
	// c
	"ca", "ce", "ci", "cai", "cao", "cou", "can", "cen", "cang", "ceng", "cong", "cu", "cuo", "cui", "cuan", "cun",
	// s
	"sa", "se", "si", "sai", "sao", "sou", "san", "sen", "sang", "seng", "song", "su", "suo", "sui", "suan", "sun",
	// y
	"ya", "ye", "yao", "you", "yan", "yin", "yang", "ying", "yong", "yi", "yu", "yue", "yuan", "yun",
	// w
	"wa", "wo", "wai", "wei", "wan", "wen", "wang", "weng", "wu",
}

// Dictionary is a read-only set of syllable spellings backed by a patricia trie.
// It is never mutated after construction, so concurrent readers need no locking.
type Dictionary struct {
	trie  *patricia.Trie
	count int
}

var (
	defaultDict *Dictionary
	defaultOnce sync.Once
)

// Default returns the process-wide syllable table, building it on first use.
func Default() *Dictionary {
	defaultOnce.Do(func() {
		defaultDict = New(spellings)
	})
	return defaultDict
}

// New builds a dictionary from the given spellings. Duplicates are ignored.
func New(words []string) *Dictionary {
	d := &Dictionary{trie: patricia.NewTrie()}
	for _, w := range words {
		if w == "" {
			continue
		}
		if d.trie.Insert(patricia.Prefix(w), struct{}{}) {
			d.count++
		}
	}
	return d
}

// Contains reports whether s is exactly one syllable.
func (d *Dictionary) Contains(s string) bool {
	if s == "" {
		return false
	}
	return d.trie.Get(patricia.Prefix(s)) != nil
}

// HasPrefix reports whether any syllable starts with p.
// A partially typed syllable like "zhu" or "shua" is still live input.
func (d *Dictionary) HasPrefix(p string) bool {
	return d.trie.MatchSubtree(patricia.Prefix(p))
}

// Len returns the number of distinct syllables.
func (d *Dictionary) Len() int {
	return d.count
}

// Syllables returns a sorted copy of every spelling in the table.
func (d *Dictionary) Syllables() []string {
	out := make([]string, 0, d.count)
	_ = d.trie.Visit(func(p patricia.Prefix, _ patricia.Item) error {
		out = append(out, string(p))
		return nil
	})
	sort.Strings(out)
	return out
}
