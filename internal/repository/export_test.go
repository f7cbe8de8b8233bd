package repository

var TranslateInsertError = translateInsertError
