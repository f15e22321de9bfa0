package usecase

import (
	"path"
	"regexp"
	"strconv"
	"strings"
)

var digitRunRegex = regexp.MustCompile(`\d+`)

// ExtractVersion はファイルパスからバージョン番号を抽出する。
// ディレクトリ部分を除いたファイル名中の数字列をすべて左から連結して整数に変換する。
// 例: "1.createTable2.3.sql" は 123、"002createTable.sql" は 2。
// 数字を含まない場合（または int64 に収まらない場合）は false を返す。
func ExtractVersion(filePath string) (int64, bool) {
	// ディレクトリ名に含まれる数字を拾わないようにファイル名だけを対象にする
	name := path.Base(strings.ReplaceAll(filePath, `\`, "/"))

	runs := digitRunRegex.FindAllString(name, -1)
	if len(runs) == 0 {
		return 0, false
	}

	version, err := strconv.ParseInt(strings.Join(runs, ""), 10, 64)
	if err != nil {
		return 0, false
	}
	return version, true
}
