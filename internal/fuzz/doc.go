// Package fuzztests houses Go fuzz harnesses for everything stark reads from
// outside: operand expressions and type names, package manifests, metadata
// images and cached spelling indexes. Their goal is to guard against panics
// and allocator explosions on arbitrary input.
//
// Назначение: прогонять байты через парсеры и декодеры и проверять, что
// полученные узлы держат инварианты спанов.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
//
// Зависимости: internal/syntax, internal/project, internal/metadata,
// internal/bktree, internal/testkit.
package fuzztests
